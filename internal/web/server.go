// Package web provides the HTTP server and the REST handlers of the record
// manager.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/JonMunkholm/cutdesk/internal/config"
	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/JonMunkholm/cutdesk/internal/permissions"
	"github.com/JonMunkholm/cutdesk/internal/web/middleware"
)

// Server is the HTTP server of the record manager.
type Server struct {
	cfg     *config.Config
	service *core.Service
	editor  *permissions.Editor
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, service *core.Service, editor *permissions.Editor) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		editor:  editor,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", middleware.RoleHeader, "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.cfg.Rate.Enabled {
		s.router.Use(httprate.Limit(s.cfg.Rate.RequestsPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
	}
	s.router.Use(middleware.Role)
}

// writeLimit throttles mutating routes harder than reads.
func (s *Server) writeLimit() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(s.cfg.Rate.WriteLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(rateLimited),
	)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(handleNotFound)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/entities", s.handleListEntities)
		r.Route("/entities/{entity}", func(r chi.Router) {
			r.Get("/schema", s.handleSchema)
			r.Post("/form", s.handleForm)

			r.Get("/records", s.handleListRecords)
			r.Get("/records/{id}", s.handleGetRecord)

			r.Group(func(r chi.Router) {
				r.Use(s.writeLimit())
				r.Post("/records", s.handleCreateRecord)
				r.Put("/records/{id}", s.handleUpdateRecord)
				r.Post("/records/{id}/delete-request", s.handleRequestDelete)
				r.Delete("/records/{id}", s.handleDeleteRecord)
			})
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", s.handlePermissions)
			r.Group(func(r chi.Router) {
				r.Use(s.writeLimit())
				r.Post("/toggle", s.handleTogglePermission)
				r.Post("/bulk", s.handleBulkPermissions)
				r.Post("/reset", s.handleResetPermissions)
				r.Post("/save", s.handleSavePermissions)
			})
		})

		r.Get("/stats", s.handleStats)
		r.Get("/audit-log", s.handleAuditLog)
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
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				// Form fragments carry inline Tailwind classes only.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

var errRateLimited = errors.New("rate limit exceeded")

// rateLimited answers throttled requests in the envelope. httprate has
// already set Retry-After.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, errRateLimited)
}
