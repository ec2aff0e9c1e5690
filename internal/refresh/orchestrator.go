// Package refresh owns the only mutable cell in the system: the
// last-successful hydrated snapshot. Fetching the underlying tables is a
// fan-out of independent requests joined before hydration; a single
// failure fails the whole refresh and the previous snapshot stays in
// place (stale-but-valid over blank-but-fresh).
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsdeck/opsdeck/internal/hydrate"
	"github.com/opsdeck/opsdeck/internal/source"
	"github.com/opsdeck/opsdeck/internal/table"
	"golang.org/x/sync/errgroup"
)

// Snapshot is one immutable hydrated view of all tables. Readers must
// treat it as read-only.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Tables    hydrate.Tables
}

// Orchestrator coordinates refreshes and guards the current snapshot.
type Orchestrator struct {
	sources []source.Source
	logger  *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// NewOrchestrator creates an orchestrator over the configured sources.
func NewOrchestrator(sources []source.Source, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{sources: sources, logger: logger}
}

// Refresh fetches every source concurrently, hydrates the joined result
// and installs it as the current snapshot. On any fetch error nothing is
// installed and the previous snapshot (possibly nil) remains.
func (o *Orchestrator) Refresh(ctx context.Context) (*Snapshot, error) {
	raw := make(hydrate.Tables, len(o.sources))
	var rawMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range o.sources {
		src := src
		g.Go(func() error {
			tbl, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", src.Kind(), err)
			}
			rawMu.Lock()
			raw[src.Kind()] = tbl
			rawMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.Warn("refresh failed, keeping previous snapshot", "error", err)
		return o.Snapshot(), err
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: time.Now(),
		Tables:    hydrate.All(raw),
	}

	o.mu.Lock()
	o.snap = snap
	o.mu.Unlock()

	o.logger.Info("refresh complete", "snapshot", snap.ID, "kinds", len(raw), "tasks", len(snap.Tables[table.KindTask]))
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first
// successful refresh.
func (o *Orchestrator) Snapshot() *Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snap
}
