package api

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/fredcicles/sas/internal/httputil"
	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/internal/ratelimiter"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

type contextKey string

// requestIDKey carries the request ID through the request context.
const requestIDKey contextKey = "request_id"

// RequestID returns the request ID associated with the context, or "" if
// the RequestID middleware did not run.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRequestID assigns each request a UUID, exposed via the
// X-Request-ID response header and the request context. An inbound
// X-Request-ID header is honored so callers can correlate across services.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

// Recovery converts handler panics into RFC 7807 500 responses instead of
// tearing down the connection.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered: %v method=%s path=%s request_id=%s\n%s",
						err, r.Method, r.URL.Path, RequestID(r.Context()), debug.Stack())

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects requests over the configured rate with 429. A nil
// limiter disables the middleware.
func RateLimit(limiter *ratelimiter.RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				httputil.RespondError(w, http.StatusTooManyRequests, "request rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
