package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tix_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tix_purchases_total",
			Help: "Total ticket purchases by outcome",
		},
		[]string{"outcome"},
	)

	PurchaseRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tix_purchase_retries_total",
			Help: "Purchase attempts retried after serialization conflicts",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tix_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tix_outbox_lag_seconds",
			Help: "Age of the oldest unpublished outbox record",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tix_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tix_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
