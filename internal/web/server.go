// Package web provides the HTTP server and handlers for member import,
// export and document rendering.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/memberdesk/internal/config"
	"github.com/JonMunkholm/memberdesk/internal/core"
	webmw "github.com/JonMunkholm/memberdesk/internal/web/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the member desk.
type Server struct {
	service *core.Service
	cfg     *config.Config
	db      Pinger
	router  *chi.Mux
	server  *http.Server
	done    chan struct{}
}

// NewServer creates a Server. db may be nil, in which case /healthz does
// not check the database.
func NewServer(service *core.Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
		done:    make(chan struct{}),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute, s.done)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		r.Get("/datasets", s.handleListDatasets)
		r.Get("/template/{dataset}", s.handleDownloadTemplate)
		r.Get("/export/{dataset}", s.handleExportData)
		r.Get("/history/{dataset}", s.handleImportHistory)
		r.Get("/imports/status", s.handleImportQueueStatus)
		r.Get("/reports/{dataset}/summary.pdf", s.handleSummaryReport)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute, s.done).middleware)
			}
			r.Post("/import/{dataset}", s.handleImport)
			r.Post("/preview/{dataset}", s.handlePreview)
			r.Post("/import/{dataset}/failed-rows", s.handleFailedRows)
			r.Post("/documents", s.handleDocument)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// The dashboard only needs its own inline stylesheet.
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
