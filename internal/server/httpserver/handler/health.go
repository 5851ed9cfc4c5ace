package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The daemon is ready while its wire
// listener accepts sessions.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.status == nil || !h.status.Status().Running {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeNotReady, "gateway is not accepting sessions")
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
