package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_quote_requests_total",
		Help: "Total evaluate() requests, by final error kind (empty = success)",
	}, []string{"kind"})

	RequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_quote_request_duration_seconds",
		Help:    "End-to-end evaluate() latency",
		Buckets: prometheus.DefBuckets,
	})

	DeadlineExceededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_quote_deadline_exceeded_total",
		Help: "Requests that hit the per-request hard deadline",
	})

	BridgeFeeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_quote_bridge_fee_failures_total",
		Help: "Bridge-fee quote failures, by direction and asset",
	}, []string{"direction", "asset"})

	PoolExhaustedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_quote_pool_exhausted_total",
		Help: "Connection-pool acquisition timeouts, by chain",
	}, []string{"chain"})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DeadlineExceededTotal,
		BridgeFeeFailuresTotal,
		PoolExhaustedTotal,
	)
}
