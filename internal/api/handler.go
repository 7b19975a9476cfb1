package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/api/respond"
	"github.com/ftcvanguard/vanguard-alerts/internal/config"
	"github.com/ftcvanguard/vanguard-alerts/internal/ledger"
	"github.com/ftcvanguard/vanguard-alerts/internal/push"
	"github.com/ftcvanguard/vanguard-alerts/internal/watch"
)

// DBHealth is the database reachability probe. Nil when running without a
// database (in-memory ledger).
type DBHealth interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg        *config.Config
	db         DBHealth
	store      ledger.Store
	dispatcher *push.Dispatcher
	supervisor *watch.Supervisor
}

// NewHandler creates a Handler with shared dependencies.
func NewHandler(cfg *config.Config, db DBHealth, store ledger.Store, dispatcher *push.Dispatcher, supervisor *watch.Supervisor) *Handler {
	return &Handler{
		cfg:        cfg,
		db:         db,
		store:      store,
		dispatcher: dispatcher,
		supervisor: supervisor,
	}
}

// Root serves service info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Vanguard Alerts",
		"status":  "running",
		"teams":   len(h.cfg.Teams),
		"cadence": h.cfg.PollInterval.String(),
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies the ledger database is reachable.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status": "ok", "database": "disabled",
		})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.db.HealthCheck(ctx); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status": "ok", "database": "connected",
	})
}

// Status returns the supervisor's health snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.supervisor.Status())
}

// RecentNotifications lists the newest ledger entries.
func (h *Handler) RecentNotifications(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Recent(r.Context(), 50)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "LEDGER_READ", err.Error())
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"notifications": entries,
	})
}

// notifyRequest is the admin send-now payload.
type notifyRequest struct {
	TeamID   int    `json:"teamId"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
	ClickURL string `json:"clickUrl"`
}

// Notify sends one alert immediately through the shared dispatcher. Same
// ledger, same dedup: an alert the polling loop already delivered comes back
// as already_sent, and the loop cannot later re-deliver one sent from here.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_JSON", "request body must be JSON")
		return
	}
	if req.TeamID <= 0 || req.Title == "" || req.Message == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS", "teamId, title, and message are required")
		return
	}
	if req.Priority == 0 {
		req.Priority = push.PriorityDefault
	}

	outcome, err := h.dispatcher.Send(r.Context(), req.TeamID, req.Title, req.Message, req.Priority, req.ClickURL)
	if outcome == push.OutcomeFailed {
		respond.WriteError(w, http.StatusBadGateway, "DELIVERY_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"outcome": outcome.String(),
	})
}
