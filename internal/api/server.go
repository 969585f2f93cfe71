// Package api exposes the association admin over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/pkg/ratelimit"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/dashboard"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

// Services are the business services behind the handlers.
type Services struct {
	Applications *application.Service
	Members      *member.Service
	Specialists  *specialist.Service
	Subscribers  *subscriber.Service
	Newsletters  *newsletter.Service
	Publications *publication.Service
	Dashboard    *dashboard.Service
}

// Options configure the router.
type Options struct {
	AllowedOrigins []string
	// FunctionsToken guards /functions/v1. Empty disables those routes.
	FunctionsToken string
	// Auth signs admins in. Nil serves the admin API without sign-in.
	Auth *auth.Manager
	// Events streams table changes to admins.
	Events http.Handler
	Health *HealthChecker
	// MaxUploadBytes caps publication file uploads.
	MaxUploadBytes int64
	// PublicLimiter throttles /api/public per client. Nil disables it.
	PublicLimiter ratelimit.Limiter
	// TrustProxy honors X-Forwarded-For and X-Real-IP. Enable it only when
	// a proxy that overwrites those headers fronts every request.
	TrustProxy bool
}

// Server represents the API server
type Server struct {
	handler http.Handler
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(svc Services, opts Options) *Server {
	h := &Handlers{svc: svc, maxUpload: opts.MaxUploadBytes}
	if h.maxUpload <= 0 {
		h.maxUpload = 50 << 20
	}
	router := SetupRoutes(h, opts)
	return &Server{handler: router, router: router}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// SSE streams and file uploads need a long write window.
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
