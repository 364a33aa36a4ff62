package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deruvodaniel/lavenius-platform/internal/calendar"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// CalendarHandler exposes the calendar connection engine to the dashboard.
type CalendarHandler struct {
	manager      *calendar.StateManager
	checker      *calendar.Checker
	coordinator  *calendar.Coordinator
	syncer       *calendar.Syncer
	disconnector *calendar.Disconnector
	logger       *logging.Logger
}

// NewCalendarHandler creates the dashboard-facing calendar handler.
func NewCalendarHandler(manager *calendar.StateManager, checker *calendar.Checker, coordinator *calendar.Coordinator, syncer *calendar.Syncer, disconnector *calendar.Disconnector, logger *logging.Logger) *CalendarHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarHandler{
		manager:      manager,
		checker:      checker,
		coordinator:  coordinator,
		syncer:       syncer,
		disconnector: disconnector,
		logger:       logger,
	}
}

// Routes returns the calendar routes.
func (h *CalendarHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.GetStatus)
	r.Post("/check", h.Check)
	r.Post("/connect", h.Connect)
	r.Post("/sync", h.Sync)
	r.Delete("/disconnect", h.Disconnect)
	return r
}

// GetStatus returns the current connection state snapshot.
// GET /calendar/status
func (h *CalendarHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Snapshot())
}

// Check triggers a connection check and returns the resulting snapshot.
// Check failures are absorbed by design; the snapshot tells the story.
// POST /calendar/check
func (h *CalendarHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.checker.CheckConnection(r.Context())
	writeJSON(w, http.StatusOK, h.manager.Snapshot())
}

// Connect starts the consent-window authorization flow.
// POST /calendar/connect
func (h *CalendarHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Connect(r.Context()); err != nil {
		h.logger.Error("calendar connect failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"started": true})
}

// Sync triggers a manual synchronization.
// POST /calendar/sync
func (h *CalendarHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.Sync(r.Context()); err != nil {
		h.logger.Error("calendar sync failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Snapshot())
}

// Disconnect removes the calendar connection.
// DELETE /calendar/disconnect
func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.disconnector.Disconnect(r.Context()); err != nil {
		h.logger.Error("calendar disconnect failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
