package datasync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "sync",
		Name:      "pushes_total",
		Help:      "Number of remote pushes grouped by key and outcome.",
	}, []string{"key", "outcome"})

	pullCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "sync",
		Name:      "pulls_total",
		Help:      "Number of remote pulls grouped by key and outcome.",
	}, []string{"key", "outcome"})

	coalescedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "sync",
		Name:      "coalesced_notifications_total",
		Help:      "Number of mutations folded into an already pending push.",
	}, []string{"key"})

	lastPushGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lifetrack",
		Subsystem: "sync",
		Name:      "last_push_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful push per key.",
	}, []string{"key"})
)

func init() {
	prometheus.MustRegister(pushCounter, pullCounter, coalescedCounter, lastPushGauge)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func recordPush(key string, err error, at time.Time) {
	pushCounter.WithLabelValues(key, outcome(err)).Inc()
	if err == nil && !at.IsZero() {
		lastPushGauge.WithLabelValues(key).Set(float64(at.Unix()))
	}
}

func recordPull(key string, err error) {
	pullCounter.WithLabelValues(key, outcome(err)).Inc()
}

func recordCoalesced(key string) {
	coalescedCounter.WithLabelValues(key).Inc()
}
