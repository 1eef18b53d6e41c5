package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricNamePublishes = "pricefeed_publisher_publishes_total"
	MetricNameCreated   = "pricefeed_publisher_accounts_created_total"
	MetricNameDuration  = "pricefeed_publisher_publish_duration_seconds"

	LabelResult = "result"

	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var (
	MetricPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePublishes,
			Help: "Number of per-feed price publishes by result",
		},
		[]string{LabelResult},
	)

	MetricCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreated,
			Help: "Number of price accounts created by the publisher",
		},
	)

	MetricDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameDuration,
			Help:    "Duration of a full publish round across all feeds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
