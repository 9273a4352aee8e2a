package replicated

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_store_backend_operations_total",
		Help: "Backend calls made by the replicated store, labeled by outcome",
	}, []string{"backend", "op", "outcome"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erp_store_backend_duration_seconds",
		Help:    "Latency of backend calls",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 3},
	}, []string{"backend", "op"})

	fallbackReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_store_fallback_reads_total",
		Help: "Reads served by querying the secondary store",
	}, []string{"op"})

	partialWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_store_partial_writes_total",
		Help: "Mirror writes accepted by only one backend",
	}, []string{"op", "failed_backend"})
)
