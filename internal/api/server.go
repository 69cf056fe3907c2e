// Package api provides the HTTP API server and handlers for the love letters server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/loveletters/loveletters-server/internal/http/response"
	"github.com/loveletters/loveletters-server/internal/ratelimit"
	"github.com/loveletters/loveletters-server/internal/service"
	"github.com/loveletters/loveletters-server/internal/store"
)

// Services groups the services the handlers call.
type Services struct {
	Letters *service.LetterService
	Search  *service.SearchService // nil when search is disabled
}

// Options configures the HTTP surface.
type Options struct {
	Version string

	// ExposeErrors includes the text of unexpected errors in 500 responses.
	// Enable outside production only.
	ExposeErrors bool

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// RateLimiter throttles /api/ requests per client IP. Nil disables it.
	RateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.LetterStore
	services  *Services
	opts      Options
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
	startedAt time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.LetterStore, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		store:     st,
		services:  services,
		opts:      opts,
		router:    chi.NewRouter(),
		logger:    logger,
		startedAt: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the Huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(securityHeaders)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger, s.opts.ExposeErrors))

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", authorHeader},
			ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if s.opts.RateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.opts.RateLimiter, s.logger))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	humaConfig := huma.DefaultConfig("Love Letters API", s.opts.Version)
	humaConfig.Info.Description = "A shared journal of love letters between two people."
	// The default hook adds a "$schema" link to every response body.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(s.opts.ExposeErrors)

	s.registerHealthRoutes()
	s.registerLetterRoutes()
	s.registerSearchRoutes()
	s.registerMetaRoutes()

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route "+r.Method+" "+r.URL.Path+" not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, "Method "+r.Method+" not allowed on "+r.URL.Path, s.logger)
	})
}
