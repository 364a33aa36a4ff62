package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deruvodaniel/lavenius-platform/internal/calendar"
	"github.com/deruvodaniel/lavenius-platform/internal/http/handlers"
	httpmiddleware "github.com/deruvodaniel/lavenius-platform/internal/http/middleware"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CalendarHandler    *handlers.CalendarHandler
	OAuthHandler       *calendar.OAuthHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
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

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// OAuth callback (public; the provider redirects the consent window here)
	if cfg.OAuthHandler != nil {
		r.Mount("/oauth", cfg.OAuthHandler.Routes())
	}

	if cfg.CalendarHandler != nil {
		r.Mount("/calendar", cfg.CalendarHandler.Routes())
	}

	return r
}
