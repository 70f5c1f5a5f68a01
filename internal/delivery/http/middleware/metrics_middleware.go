package middleware

import (
	"net/http"
	"strconv"
	"time"

	"clinic-management/internal/infrastructure/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type MetricsMiddleware struct {
	collector *metrics.Collector
	log       *logrus.Logger
}

func NewMetricsMiddleware(collector *metrics.Collector, log *logrus.Logger) *MetricsMiddleware {
	return &MetricsMiddleware{collector: collector, log: log}
}

// Handle records request count and latency per route template and logs each request
func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.collector.InFlightGauge.Inc()
		defer m.collector.InFlightGauge.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Route templates keep label cardinality bounded
		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		elapsed := time.Since(start)
		status := strconv.Itoa(rec.status)
		m.collector.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.collector.RequestDuration.WithLabelValues(r.Method, path, status).Observe(elapsed.Seconds())

		m.log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        path,
			"status":      rec.status,
			"duration_ms": elapsed.Milliseconds(),
		}).Debug("HTTP request")
	})
}
