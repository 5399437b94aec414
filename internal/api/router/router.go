package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/mediremind/internal/api/handlers"
	"github.com/pratik-mahalle/mediremind/internal/api/middleware"
	"github.com/pratik-mahalle/mediremind/internal/config"
	"github.com/pratik-mahalle/mediremind/internal/pkg/errors"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/metrics"
	"github.com/pratik-mahalle/mediremind/internal/pkg/utils"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
}

// Deps are the pieces the router needs besides handlers. Limiter may be
// nil to turn rate limiting off.
type Deps struct {
	Verifier middleware.TokenVerifier
	Limiter  *middleware.RateLimiter
}

func New(cfg *config.Config, log *logger.Logger, d Deps, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.StripSlashes)
	r.Use(metrics.Middleware)
	// Innermost writer wrapper, so handlers can add log fields
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, errors.NotFound("Route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorMessage(w, http.StatusMethodNotAllowed, errors.ErrCodeBadRequest, "Method not allowed")
	})

	// Public routes
	r.Get("/", h.Health.Home)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Middleware)
			}
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.Verifier))
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
		})
	})

	return r
}
