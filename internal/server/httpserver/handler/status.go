package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/ecigate-go/internal/infra/buildinfo"
)

// handleStatus handles GET /admin/v1/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version: buildinfo.Get().Version,
		Commit:  buildinfo.Get().Commit,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Journal: h.journal != nil,
	}
	if h.status != nil {
		resp.Gateway = h.status.Status()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
