package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// SessionHandler lists realtime session audit events.
type SessionHandler struct {
	Service ports.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{
		Service: service,
	}
}

// HandleGetSessions returns the newest session events, ?limit=N.
func (h *SessionHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch session events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": events,
	})
}
