package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/logger"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

const requestIDHeader = "X-Request-ID"

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		if r.RemoteAddr != "" {
			log = log.WithField("remote_addr", r.RemoteAddr)
		}

		r = r.WithContext(logger.NewContext(r.Context(), log))
		w.Header().Set(requestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		log.Debug("request started")
		next.ServeHTTP(wrapped, r)

		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// metricsMiddleware records request counts and latency keyed by the matched
// route pattern, so path values never explode label cardinality.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		s.Metrics.ObserveHTTP(route, r.Method, wrapped.status, time.Since(start))
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
