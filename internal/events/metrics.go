package events

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "events",
		Name:      "delivered_total",
		Help:      "Number of data-saved events published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Number of data-saved events that failed to publish.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lifetrack",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Number of data-saved events dropped because the queue was full.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lifetrack",
		Subsystem: "events",
		Name:      "batch_duration_seconds",
		Help:      "Time spent delivering event batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, droppedCounter, batchDuration)
}
