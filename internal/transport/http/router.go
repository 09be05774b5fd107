package http

import (
	"net/http"
	"strings"
	"time"

	obsmw "authflow/internal/observability/middleware"
	"authflow/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Auth               service.AuthService
	Reset              service.PasswordResetService
	Tokens             service.TokenService
	CORSOrigins        []string
	RateLimitPerMinute int
	// Metrics serves /metrics; nil uses the default prometheus registry.
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig) chi.Router {
	h := &handler{auth: cfg.Auth, reset: cfg.Reset}

	r := chi.NewRouter()

	// --- Middlewares ---
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", obsmw.HeaderRequestID},
		ExposedHeaders:   []string{obsmw.HeaderRequestID, obsmw.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(obsmw.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/google", h.google)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/validate-otp", h.validateOTP)
		r.Post("/reset-password", h.resetPassword)

		r.Group(func(pr chi.Router) {
			pr.Use(RequireSession(cfg.Tokens))
			pr.Get("/me", h.me)
		})
	})

	return r
}

func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
