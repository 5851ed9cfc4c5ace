package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/ecigate-go/internal/storage/journal"
)

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 1000

// handleListJournal handles GET /admin/v1/journal.
//
// Query parameters: limit, program, since (RFC 3339) and order
// (newest or oldest, default newest).
func (h *Handler) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeError(w, r, http.StatusNotFound, CodeJournalDisabled, "journal is disabled")
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	entries, err := h.journal.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("journal list failed", "request_id", getRequestID(r), "error", err)
		h.writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error")
		return
	}

	resp := ListJournalResponse{Entries: make([]JournalEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, entryToResponse(e))
	}
	resp.Count = len(resp.Entries)
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleGetJournal handles GET /admin/v1/journal/{id}.
func (h *Handler) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeError(w, r, http.StatusNotFound, CodeJournalDisabled, "journal is disabled")
		return
	}

	id := r.PathValue("id")
	if _, err := ulid.ParseStrict(id); err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeInvalidArgument, "invalid entry id")
		return
	}

	e, err := h.journal.Get(r.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, CodeNotFound, "entry not found")
		return
	}
	if err != nil {
		h.logger.Error("journal get failed", "request_id", getRequestID(r), "id", id, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error")
		return
	}
	h.writeJSON(w, r, http.StatusOK, entryToResponse(e))
}

func parseListOptions(r *http.Request) (journal.ListOptions, error) {
	q := r.URL.Query()
	opts := journal.ListOptions{
		Program: strings.ToUpper(strings.TrimSpace(q.Get("program"))),
		Newest:  true,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New("limit must be a positive integer")
		}
		opts.Limit = min(n, MaxListLimit)
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, errors.New("since must be an RFC 3339 time")
		}
		opts.Since = t
	}

	switch q.Get("order") {
	case "", "newest":
	case "oldest":
		opts.Newest = false
	default:
		return opts, errors.New("order must be newest or oldest")
	}
	return opts, nil
}

func entryToResponse(e *journal.Entry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:             e.ID,
		Time:           e.Time.UTC().Format(time.RFC3339Nano),
		Remote:         e.Remote,
		Server:         e.Server,
		UserID:         e.UserID,
		Program:        e.Program,
		OperationCode:  e.OperationCode,
		ReturnCode:     e.ReturnCode,
		AbendCode:      e.AbendCode,
		RequestLength:  e.RequestLength,
		ResponseLength: e.ResponseLength,
		DurationMs:     float64(e.Duration.Microseconds()) / 1000,
		Failed:         e.Failed(),
	}
}
