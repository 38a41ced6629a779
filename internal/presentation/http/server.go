package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/identity"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
)

// Options configures the HTTP server wiring.
type Options struct {
	Identity       *identity.Service
	Registry       *slug.Registry
	ChangeRequests *changerequest.Workflow
	Ownership      *ownership.Workflow
	Health         func(ctx context.Context) error
	Logger         *logrus.Logger
	SentryHub      *sentry.Hub
	RateLimiter    RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the JSON API via Huma on a standard ServeMux.
type Server struct {
	api            huma.API
	mux            *stdhttp.ServeMux
	identity       *identity.Service
	registry       *slug.Registry
	changeRequests *changerequest.Workflow
	ownership      *ownership.Workflow
	health         func(ctx context.Context) error
	logger         *logrus.Logger
	sentry         *sentry.Hub
	rateLimiter    *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	switch {
	case opts.Identity == nil:
		return nil, eris.New("identity service is required")
	case opts.Registry == nil:
		return nil, eris.New("slug registry is required")
	case opts.ChangeRequests == nil:
		return nil, eris.New("change request workflow is required")
	case opts.Ownership == nil:
		return nil, eris.New("ownership workflow is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Playshelf", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:            api,
		mux:            mux,
		identity:       opts.Identity,
		registry:       opts.Registry,
		changeRequests: opts.ChangeRequests,
		ownership:      opts.Ownership,
		health:         opts.Health,
		logger:         opts.Logger,
		sentry:         opts.SentryHub,
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.actorMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerHealthRoute()
	s.registerSlugRoutes()
	s.registerStudioRoutes()
	s.registerPageRoutes()
	s.registerVerificationRoutes()
	s.registerChangeRequestRoutes()
	s.registerOwnershipRoutes()
	s.registerProtectedSlugRoutes()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
