package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contextKey is the private type for request-scoped values set by middleware.
type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDFrom returns the request id set by requestIDMiddleware, or an
// empty string when the middleware did not run.
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// corsMiddleware handles CORS headers for the editor frontends
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// The editor runs on localhost during development
		allowedOrigins := []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
		}

		originAllowed := false
		for _, allowed := range allowedOrigins {
			if origin == allowed || strings.HasPrefix(origin, allowed) {
				originAllowed = true
				break
			}
		}

		if originAllowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID, Accept, Origin")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an id for log correlation.
// A caller-supplied X-Request-ID is kept so ids stay stable across hops.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status_code", wrapper.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

// recoveryMiddleware converts handler panics into 500 responses
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("request_id", requestIDFrom(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"type":"error","code":"Internal Server Error","message":"internal server error"}`)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware sets default content type
func (s *Server) contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") == "" && (r.Method == "POST" || r.Method == "PUT") {
			r.Header.Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// performanceMiddleware tracks request performance metrics
func (s *Server) performanceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		if s.services.Metrics == nil {
			return
		}

		tags := map[string]string{
			"method":      r.Method,
			"endpoint":    r.URL.Path,
			"status_code": strconv.Itoa(wrapper.statusCode),
		}

		// Record request duration
		s.services.Metrics.RecordDuration("http.request.duration", duration, tags)

		// Increment request counter
		s.services.Metrics.IncrementCounter("http.requests.total", tags)

		// Track error rates
		if wrapper.statusCode >= 400 {
			s.services.Metrics.IncrementCounter("http.requests.errors", tags)
		}

		// Track slow requests
		slowThreshold := s.config.Performance.SlowRequestThreshold
		if slowThreshold <= 0 {
			slowThreshold = time.Second
		}
		if duration > slowThreshold {
			s.services.Metrics.IncrementCounter("http.requests.slow", tags)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
