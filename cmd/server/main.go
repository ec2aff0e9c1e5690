package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/prefs"
	"github.com/opsdeck/opsdeck/internal/refresh"
	"github.com/opsdeck/opsdeck/internal/source"
	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/opsdeck/opsdeck/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	store, err := prefs.Open(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open preferences", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	sources, cleanup, err := buildSources(cfg.Sources)
	if err != nil {
		logger.Error("failed to configure sources", "error", err)
		os.Exit(1)
	}
	defer cleanup()
	if len(sources) == 0 {
		logger.Error("no table sources configured")
		os.Exit(1)
	}

	refresher := refresh.NewOrchestrator(sources, logger)

	// First refresh at startup. Failure is not fatal: the server comes
	// up and reports "no data yet" until a refresh succeeds.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if _, err := refresher.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}
	cancel()

	handler := transport.NewHandler(refresher, store, cfg.User.PersonID, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// buildSources maps the configured source specs to implementations.
// SQLite handles are shared per path and closed together via cleanup.
func buildSources(specs map[string]config.SourceConfig) ([]source.Source, func(), error) {
	sources := make([]source.Source, 0, len(specs))
	dbs := make(map[string]*sql.DB)
	cleanup := func() {
		for _, db := range dbs {
			_ = db.Close()
		}
	}

	for kindName, spec := range specs {
		kind := table.Kind(kindName)
		switch spec.Type {
		case "xlsx":
			sources = append(sources, source.NewXLSXSource(kind, spec.Path, spec.Sheet))
		case "sqlite":
			db := dbs[spec.Path]
			if db == nil {
				var err error
				db, err = source.OpenSQLite(spec.Path)
				if err != nil {
					cleanup()
					return nil, nil, fmt.Errorf("source %s: %w", kindName, err)
				}
				dbs[spec.Path] = db
			}
			sources = append(sources, source.NewSQLiteSource(kind, db, spec.Table))
		case "http":
			sources = append(sources, source.NewHTTPJSONSource(kind, spec.URL, nil))
		default:
			cleanup()
			return nil, nil, fmt.Errorf("source %s: unknown type %q", kindName, spec.Type)
		}
	}

	return sources, cleanup, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
