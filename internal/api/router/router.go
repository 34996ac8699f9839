package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opencivic/infrawatch/internal/auth"
	httpmiddleware "github.com/opencivic/infrawatch/internal/http/middleware"
	"github.com/opencivic/infrawatch/internal/reports"
	"github.com/opencivic/infrawatch/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	ReportsHandler *reports.Handler
	AuthHandler    *auth.Handler
	AuthService    *auth.Service
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	SubmitRatePerSec   float64
	SubmitBurst        int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.ReportsHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		submit := public.With(limitBody(cfg.MaxUploadBytes))
		if cfg.SubmitRatePerSec > 0 {
			submit = submit.With(httpmiddleware.RateLimit(cfg.SubmitRatePerSec, cfg.SubmitBurst))
		}
		submit.Post("/submit-report", cfg.ReportsHandler.Submit)

		public.Get("/image/{fileID}", cfg.ReportsHandler.GetImage)

		if cfg.AuthHandler != nil {
			public.Route("/auth", func(r chi.Router) {
				r.Post("/signup", cfg.AuthHandler.Signup)
				r.Post("/login", cfg.AuthHandler.Login)
				r.Post("/verify", cfg.AuthHandler.Verify)
				r.Post("/logout", cfg.AuthHandler.Logout)
			})
		}
	})

	// Authenticated endpoints
	r.Group(func(authed chi.Router) {
		if cfg.AuthService != nil {
			authed.Use(cfg.AuthService.RequireAuth)
		}
		authed.Post("/reports/{reportID}/feedback", cfg.ReportsHandler.AddFeedback)
	})

	// Admin endpoints
	r.Group(func(admin chi.Router) {
		if cfg.AuthService != nil {
			admin.Use(cfg.AuthService.RequireAdmin)
		}
		admin.Get("/reports", cfg.ReportsHandler.List)
		admin.Post("/reports/{reportID}/status", cfg.ReportsHandler.UpdateStatus)
	})

	return r
}

// limitBody caps request bodies so oversized uploads fail early.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
