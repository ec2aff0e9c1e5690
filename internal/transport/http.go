// Package transport exposes the dashboard over HTTP. It is a thin
// collaborator: filter and view state live here and are threaded into
// the pure engines as explicit parameters on every request.
package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/opsdeck/opsdeck/internal/cascade"
	"github.com/opsdeck/opsdeck/internal/metrics"
	"github.com/opsdeck/opsdeck/internal/refresh"
	"github.com/opsdeck/opsdeck/internal/table"
)

// ViewDashboard is the default top-level view; switching to any other
// view resets the active filter.
const (
	ViewDashboard    = "dashboard"
	ViewTeamActivity = "team-activity"
)

// Preferences is the persisted preference surface the handler reads and
// writes. Reads degrade to defaults, never error.
type Preferences interface {
	ViewMode() cascade.ViewMode
	SetViewMode(cascade.ViewMode) error
	CardOrder() []string
	SetCardOrder([]string) error
}

// Handler serves the dashboard API.
type Handler struct {
	refresher *refresh.Orchestrator
	prefs     Preferences
	logger    *slog.Logger
	personID  string

	mu         sync.Mutex
	filter     cascade.Filter
	view       string
	refreshErr string
}

// NewHandler wires the handler. personID identifies the signed-in person
// for team-mode views.
func NewHandler(refresher *refresh.Orchestrator, prefs Preferences, personID string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		refresher: refresher,
		prefs:     prefs,
		logger:    logger,
		personID:  personID,
		filter:    cascade.None,
		view:      ViewDashboard,
	}
}

// Router builds the chi router for the handler.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", h.handleHealth)
	r.Get("/api/dashboard", h.handleDashboard)
	r.Post("/api/filter", h.handleSelectFilter)
	r.Delete("/api/filter", h.handleClearFilter)
	r.Put("/api/view-mode", h.handleViewMode)
	r.Put("/api/view", h.handleView)
	r.Put("/api/card-order", h.handleCardOrder)
	r.Post("/api/refresh", h.handleRefresh)

	return r
}

// DashboardResponse is the full render payload for one request.
type DashboardResponse struct {
	SnapshotID  string               `json:"snapshotId,omitempty"`
	Filter      cascade.Filter       `json:"filter"`
	ViewMode    cascade.ViewMode     `json:"viewMode"`
	View        string               `json:"view"`
	Display     cascade.DisplaySet   `json:"display"`
	Highlight   cascade.Highlight    `json:"highlight"`
	TaskTitle   string               `json:"taskTitle"`
	FilterLabel string               `json:"filterLabel"`
	Cards       []metrics.KPI        `json:"cards"`
	TeamLoads   []metrics.PersonLoad `json:"teamLoads"`
	Notice      string               `json:"notice,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleSelectFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind cascade.FilterKind `json:"kind"`
		ID   string             `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.filter = cascade.Select(h.filter, req.Kind, req.ID)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleClearFilter(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	h.filter = cascade.Clear()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleViewMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	mode := cascade.ParseViewMode(req.Mode)
	if err := h.prefs.SetViewMode(mode); err != nil {
		h.logger.Warn("persisting view mode failed", "error", err)
	}

	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.View == "" {
		req.View = ViewDashboard
	}

	h.mu.Lock()
	if req.View != h.view {
		// Filters do not persist across a top-level navigation change.
		h.filter = cascade.None
	}
	h.view = req.View
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleCardOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.prefs.SetCardOrder(req.Order); err != nil {
		h.logger.Warn("persisting card order failed", "error", err)
	}
	writeJSON(w, http.StatusOK, h.render())
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_, err := h.refresher.Refresh(r.Context())

	h.mu.Lock()
	if err != nil {
		h.refreshErr = "data refresh failed, showing last good data"
	} else {
		h.refreshErr = ""
	}
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("manual refresh failed", "error", err)
	}
	writeJSON(w, http.StatusOK, h.render())
}

// render evaluates the cascade and metrics against the current snapshot
// and session state. The prior snapshot keeps rendering after a failed
// refresh, with a notice attached.
func (h *Handler) render() DashboardResponse {
	h.mu.Lock()
	filter := h.filter
	view := h.view
	notice := h.refreshErr
	h.mu.Unlock()

	mode := h.prefs.ViewMode()

	resp := DashboardResponse{
		Filter:   filter,
		ViewMode: mode,
		View:     view,
		Notice:   notice,
	}
	if resp.Filter.Kind == "" {
		resp.Filter = cascade.None
	}

	snap := h.refresher.Snapshot()
	if snap == nil {
		if resp.Notice == "" {
			resp.Notice = "no data yet"
		}
		return resp
	}

	result := cascade.Evaluate(snap.Tables, filter, mode, h.personID)
	summary := metrics.Compute(result.Display, filter, mode, snap.Tables, h.personID)

	resp.SnapshotID = snap.ID
	resp.Display = result.Display
	resp.Highlight = result.Highlight
	resp.TaskTitle = result.TaskTitle
	resp.FilterLabel = result.FilterLabel
	resp.Cards = summary.Cards(h.prefs.CardOrder())
	resp.TeamLoads = metrics.TeamLoads(snap.Tables[table.KindPerson], snap.Tables[table.KindTask])
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
