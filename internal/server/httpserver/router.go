package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/ecigate-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Status reports the daemon state for /ready and /admin/v1/status.
	Status handler.StatusSource

	// Journal serves /admin/v1/journal. Nil when the journal is disabled.
	Journal handler.JournalReader

	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger

	// AdminAllowList is the IP/CIDR allowlist for admin API (empty = no restriction).
	AdminAllowList []string

	// EnableAudit logs every request.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(cfg.Status, cfg.Journal, logger)

	base := []Middleware{RequestID(), Recover(logger)}
	if cfg.EnableAudit {
		base = append(base, Audit(logger))
	}

	mux := http.NewServeMux()

	// Health endpoints
	public := Chain(h, base...)
	mux.Handle("GET /health", public)
	mux.Handle("GET /ready", public)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics, RequestID(), Recover(logger)))
	}

	// Admin API endpoints - optional network ACL
	adminMiddlewares := append([]Middleware{}, base...)
	if len(cfg.AdminAllowList) > 0 {
		adminMiddlewares = append(adminMiddlewares, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AdminAllowList,
			Logger:    logger,
		}))
	}
	admin := Chain(h, adminMiddlewares...)
	mux.Handle("GET /admin/v1/status", admin)
	mux.Handle("GET /admin/v1/journal", admin)
	mux.Handle("GET /admin/v1/journal/{id}", admin)

	return mux
}
