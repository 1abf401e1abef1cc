package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

var (
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_store_operations_total",
			Help: "Profile store operations",
		},
		[]string{"backend", "op"}, // op: read|write|miss|corrupt
	)
	StoreSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "profile_store_size",
			Help: "Number of profile records currently held by the store",
		},
		[]string{"backend"},
	)
)

var (
	SteamAPIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steam_api_requests_total",
			Help: "Requests to the Steam Web API by outcome",
		},
		[]string{"outcome"}, // ok|http_error|transport_error|decode_error
	)
	ProfileRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_refresh_total",
			Help: "Profile cache decisions by path and outcome",
		},
		[]string{"path", "outcome"}, // path: cache|refresh|force|bulk
	)
	BulkRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_bulk_refresh_duration_seconds",
			Help:    "Duration of a full bulk refresh pass",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует метрики в default registry; повторные вызовы ничего не делают.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			StoreOps, StoreSize,
			SteamAPIRequests, ProfileRefresh, BulkRefreshDuration,
		)
	})
}
