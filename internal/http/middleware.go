package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
)

const requestIDHeader = "X-Request-ID"

// middleware wraps the mux, outermost first: security headers, request
// ID, request logger, rate limit, then instrumentation right around the
// mux so the matched route pattern is visible after serving.
func (s *Server) middleware(mux http.Handler) http.Handler {
	var h http.Handler = s.instrument(mux)
	h = s.limiter.Middleware(s.detector.ClientIP, s.onRateLimited)(h)
	h = log.Middleware(s.logger, func(r *http.Request) string { return r.Header.Get(requestIDHeader) })(h)
	h = requestID(h)
	return security.Headers(security.DefaultHeadersConfig())(h)
}

// requestID keeps a client supplied UUID or assigns a new one, and
// echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := s.detector.ClientIP(r)
		if s.detector.Suspicious(r) {
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		d := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(route, r.Method, rw.statusCode, d)
		log.LogHTTPEnd(ctx, r, rw.statusCode, d.Milliseconds(), clientIP)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldPath, r.URL.Path)
	s.metrics.ObserveHTTP("rate_limited", r.Method, http.StatusTooManyRequests, 0)
	TooManyRequestsError().Write(w)
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
