// Package observability holds the server's Prometheus collectors.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dataPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lifetrack",
		Subsystem: "persistence",
		Name:      "last_data_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent data blob written to Postgres.",
	})

	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests grouped by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lifetrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(dataPersistGauge, requestCounter, requestDuration)
}

// RecordDataPersisted updates the persistence watermark gauge.
func RecordDataPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	dataPersistGauge.Set(float64(ts.Unix()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument is mux middleware counting requests per route template.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		requestCounter.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
