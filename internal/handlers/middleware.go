package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request count and latency per route template.
func (h *FlightHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		elapsed := time.Since(start)
		h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status), elapsed)
		h.logger.Debug(r.Context(), "[API_REQUEST]", logging.Fields{
			"endpoint":    endpoint,
			"method":      r.Method,
			"status":      rec.status,
			"duration_ms": elapsed.Milliseconds(),
		})
	})
}
