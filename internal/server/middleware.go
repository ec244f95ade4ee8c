package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"

	"github.com/mlserve/cifar-api/internal/logging"
)

// responseWriter is a minimal wrapper for http.ResponseWriter that allows the
// written HTTP status code to be captured for logging.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(data)
}

// loggingMiddleware assigns a request ID and logs every request with its
// status and duration.
func (s *Server) loggingMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		start := time.Now()

		requestID := req.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		wrapped := wrapResponseWriter(w)
		err := next(wrapped, req)

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}
		logging.LogRequest(req.Request, status, start, requestID)
		return err
	}
}

// limitMiddleware applies the configured per-client rate limit.
func (s *Server) limitMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		r := req.Request
		key := s.limiter.KeyGetter(r)
		if s.limiter.ExcludedKey != nil && s.limiter.ExcludedKey(key) {
			return next(w, req)
		}

		lctx, err := s.limiter.Limiter.Get(r.Context(), key)
		if err != nil {
			s.limiter.OnError(w, r, err)
			return err
		}

		w.Header().Add("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		w.Header().Add("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		w.Header().Add("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			s.limiter.OnLimitReached(w, r)
			return nil
		}
		return next(w, req)
	}
}

// corsMiddleware allows browser clients from any origin.
func corsMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return nil
		}
		return next(w, req)
	}
}
