// Package api exposes the folder catalog over HTTP: folder creation,
// owner assignment, metadata tagging, size refresh and access-based
// listing, with RFC 7807 error responses.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/internal/ratelimiter"
	"github.com/fredcicles/sas/pkg/catalog"
)

// ServerConfig configures the API HTTP server.
type ServerConfig struct {
	// ListenAddress is the address to bind, e.g. ":8080". Required.
	ListenAddress string

	// ShutdownTimeout bounds graceful shutdown. Default: 30s.
	ShutdownTimeout time.Duration

	// RequestsPerSecond and Burst throttle incoming requests.
	// RequestsPerSecond = 0 disables limiting.
	RequestsPerSecond uint
	Burst             uint

	// CORSAllowedOrigins lists origins allowed for browser calls.
	// Empty allows all origins.
	CORSAllowedOrigins []string
}

// Server is the catalog API HTTP server.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
}

// NewServer assembles the API server: routes wrapped in the middleware
// chain CORS → Recovery → RequestID → RateLimit.
func NewServer(cfg ServerConfig, cat *catalog.Catalog) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	var limiter *ratelimiter.RateLimiter
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimiter.New(cfg.RequestsPerSecond, cfg.Burst)
	}

	var handler http.Handler = Routes(NewHandler(cat))

	// Middleware applies in reverse order; each wraps the next.
	handler = RateLimit(limiter)(handler)
	handler = WithRequestID()(handler)
	handler = Recovery()(handler)

	// CORS outermost so OPTIONS pre-flight requests short-circuit.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	})
	handler = corsHandler.Handler(handler)

	return &Server{
		server: &http.Server{
			Addr:         cfg.ListenAddress,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Start runs the server until the context is cancelled or the listener
// fails. Cancellation triggers graceful shutdown bounded by the configured
// timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", s.server.Addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error: %v", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}
