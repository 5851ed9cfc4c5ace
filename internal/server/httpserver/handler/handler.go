package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
	"github.com/yndnr/ecigate-go/internal/storage/journal"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
)

// Error codes carried in the response envelope and the X-Error-Code header.
const (
	CodeOK              = "OK"
	CodeInvalidArgument = "EG-ARG-4000"
	CodeNotFound        = "EG-JRN-4040"
	CodeJournalDisabled = "EG-JRN-4041"
	CodeNotReady        = "EG-SYS-5030"
	CodeInternal        = "EG-SYS-5000"
)

// StatusSource reports the daemon state. *gatewayserver.Server implements it.
type StatusSource interface {
	Status() gatewayserver.Status
}

// JournalReader reads served flows. *journal.Journal implements it.
type JournalReader interface {
	Get(ctx context.Context, id string) (*journal.Entry, error)
	List(ctx context.Context, opts journal.ListOptions) ([]*journal.Entry, error)
}

// Handler routes admin API requests.
type Handler struct {
	status  StatusSource
	journal JournalReader
	logger  *slog.Logger
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler. j may be nil when the journal is disabled.
func New(status StatusSource, j JournalReader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		status:  status,
		journal: j,
		logger:  logger,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /admin/v1/status", h.handleStatus)
	h.mux.HandleFunc("GET /admin/v1/journal", h.handleListJournal)
	h.mux.HandleFunc("GET /admin/v1/journal/{id}", h.handleGetJournal)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(r)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message))
}

// getRequestID returns the ID the RequestID middleware attached to r.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
