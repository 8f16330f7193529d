package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "twinsync_"

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "events_total",
		Help: "Processed events by result",
	}, []string{"result"})

	TwinsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "twins_created_total",
		Help: "Twins created after a not-found registry response",
	})

	BatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "batch_failures_total",
		Help: "Batches that finished with at least one failed event",
	})
)
