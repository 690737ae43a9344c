package http

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/pkg/httpmiddleware"
	"PDFChat/backend/go/pkg/logger"
	"PDFChat/backend/go/pkg/ratelimiter"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Middleware defines a function to wrap an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server is a custom HTTP server that wraps the standard http.Server
// and provides built-in support for middleware.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithReadHeaderTimeout bounds how long a client may take to send headers.
func WithReadHeaderTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.httpServer.ReadHeaderTimeout = d
	}
}

// Per-client limiter bounds.
const (
	maxTrackedClients = 10000
	clientIdleTimeout = 10 * time.Minute
)

// NewServer creates a Server serving handler, wrapped in request logging and,
// when enabled in the config, per-client rate limiting.
func NewServer(cfg *config.AppConfig, handler http.Handler, log *logger.Logger, opts ...ServerOption) (*Server, error) {
	middlewares := []Middleware{httpmiddleware.RequestLogger(log)}

	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		limiter, err := ratelimiter.NewKeyedTokenBucket(rl.Rate, rl.Burst, maxTrackedClients, clientIdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		log.WithPayload(map[string]interface{}{"rate": rl.Rate, "burst": rl.Burst}).Info("Enabling Rate Limiter middleware")
		middlewares = append(middlewares, httpmiddleware.RateLimit(limiter))
	}

	// Apply all middlewares in reverse order so the first one runs outermost.
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = config.DefaultHTTPAddress
	}

	return srv, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
