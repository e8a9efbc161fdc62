package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/nDmitry/spacetravelling/internal/app"
)

// Logger wraps an http.Handler with access logging, one record per request
func Logger(next http.Handler) http.Handler {
	logger := app.Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response wrapper to capture the status code
		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 OK
		}

		next.ServeHTTP(lrw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", lrw.statusCode,
			"cache", lrw.Header().Get("X-CACHE-STATUS"),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", lrw.bytesWritten,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}

		switch {
		case lrw.statusCode >= http.StatusInternalServerError:
			logger.Error("HTTP request", attrs...)
		case r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/images/"):
			logger.Debug("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	})
}

// loggingResponseWriter is a wrapper for http.ResponseWriter that captures status code and response size
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

// WriteHeader captures the status code
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size
func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

// Unwrap returns the original ResponseWriter
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}
