package middleware

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sidesales/sidesales-backend/internal/logger"
)

// sanitize strips CR/LF from user-supplied values to prevent log injection.
var sanitize = strings.NewReplacer("\n", "", "\r", "").Replace

// Logger is a middleware that logs HTTP requests
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the next handler
		next.ServeHTTP(wrapped, r)

		logger.L.Info("http request",
			"method", sanitize(r.Method),
			"path", sanitize(r.URL.Path),
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"requestId", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
