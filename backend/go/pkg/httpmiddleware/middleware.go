package httpmiddleware

import (
	"PDFChat/backend/go/internal/models"
	"PDFChat/backend/go/pkg/logger"
	"PDFChat/backend/go/pkg/ratelimiter"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TraceHeader carries the per-request trace ID.
const TraceHeader = "X-Trace-ID"

// RateLimit is a middleware that applies a per-client rate limit to an HTTP handler.
// Clients are keyed by remote IP.
func RateLimit(limiter ratelimiter.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.AllowKey(clientIP(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriter is a wrapper for http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger assigns each request a trace ID, echoes it in X-Trace-ID,
// stores it in the request context for logger.ForContext, and logs the
// request once it completes.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)
			r = r.WithContext(logger.ContextWithTraceID(r.Context(), traceID))

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			entry := log.WithTrace(traceID).WithRequest(models.RequestInfo{
				Method:     r.Method,
				Path:       r.URL.Path,
				RemoteAddr: r.RemoteAddr,
				UserAgent:  r.UserAgent(),
				Status:     rw.statusCode,
				LatencyMS:  time.Since(start).Milliseconds(),
			})
			if rw.statusCode >= http.StatusInternalServerError {
				entry.Warn("request completed with server error")
				return
			}
			entry.Info("request completed")
		})
	}
}
