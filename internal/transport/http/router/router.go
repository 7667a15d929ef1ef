package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lanehart/authd/internal/transport/http/handlers"
	"github.com/lanehart/authd/internal/transport/http/middleware"
	"github.com/lanehart/authd/internal/transport/http/response"
)

// Deps carries everything the router mounts. Nil optional fields
// disable the corresponding feature instead of panicking at request
// time.
type Deps struct {
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler

	RequireAuth      func(http.Handler) http.Handler
	RequireSuperuser func(http.Handler) http.Handler

	// Limiter is optional; nil disables rate limiting.
	Limiter middleware.RateLimiter
}

// New builds the HTTP routing tree.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if d.Auth == nil {
		return r
	}

	limit := func(route string, n int, window time.Duration) func(http.Handler) http.Handler {
		return middleware.RateLimitFixedWindow(d.Limiter, middleware.FixedWindowConfig{
			RouteKey: route,
			Limit:    n,
			Window:   window,
		}, response.WriteError)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(limit("signup", 10, time.Minute)).Post("/signup", d.Auth.Signup)
		r.With(limit("login", 20, time.Minute)).Post("/login", d.Auth.Login)
		r.Get("/verify-email/{token}", d.Auth.VerifyEmail)
		r.With(limit("resend_verification", 5, 10*time.Minute)).Post("/resend-verification", d.Auth.ResendVerification)
		r.With(limit("forgot_password", 5, time.Minute)).Post("/forgot-password", d.Auth.ForgotPassword)
		r.Get("/reset-password/{token}", d.Auth.ValidateResetToken)
		r.With(limit("reset_password", 10, time.Minute)).Post("/reset-password/{token}", d.Auth.ResetPassword)

		if d.RequireAuth != nil {
			r.Group(func(r chi.Router) {
				r.Use(d.RequireAuth)
				r.Get("/me", d.Auth.Me)

				if d.RequireSuperuser != nil {
					r.With(d.RequireSuperuser).Post("/promote", d.Auth.Promote)
				}
			})
		}
	})

	return r
}
