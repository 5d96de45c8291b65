package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tripdesk/tripdesk/internal/metrics"
)

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern resolves the mux pattern a request matches, falling back to
// the raw path for unmatched requests. Patterns keep metric cardinality
// bounded. The mux sets Pattern only on the copy it hands to the matched
// handler, so middleware outside the mux has to look the pattern up itself.
func routePattern(routes *http.ServeMux, r *http.Request) string {
	if routes != nil {
		if _, pattern := routes.Handler(r); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Logging logs every request and records request metrics, labeled by the
// pattern the request resolves to in routes.
func Logging(routes *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := routePattern(routes, r)

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		if rec.status >= 500 {
			slog.Error("Request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
			)
			return
		}
		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote_addr", r.RemoteAddr,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// CORS adds the headers browsers need to call the API cross-origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
