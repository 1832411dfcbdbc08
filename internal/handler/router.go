package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/folio/folio/internal/middleware"
)

// RouterConfig holds the handlers and middleware settings of the router.
type RouterConfig struct {
	APIPrefix string
	Logger    *slog.Logger

	Root    *Handler
	Health  *HealthHandler
	Status  *StatusHandler
	Contact *ContactHandler
	Metrics http.Handler

	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	MaxBodySize      int64
	ContactRateLimit middleware.RateLimitConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	r.Get("/", cfg.Root.Root)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", cfg.Root.APIRoot)
		r.Get("/status", cfg.Status.List)
		r.Post("/status", cfg.Status.Create)
		r.With(middleware.RateLimitIP(cfg.ContactRateLimit)).Post("/contact-messages", cfg.Contact.Create)
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
