package summary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	digestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bosun",
			Name:      "digests_total",
			Help:      "Total per-project digest attempts by outcome",
		},
		[]string{"outcome"},
	)

	digestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bosun",
			Name:      "digest_run_duration_seconds",
			Help:      "Duration of full digest runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8.5m
		},
	)
)
