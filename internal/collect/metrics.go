package collect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bosun",
			Name:      "checkins_total",
			Help:      "Total check-in DMs by terminal status",
		},
		[]string{"status"},
	)

	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bosun",
			Name:      "collection_duration_seconds",
			Help:      "Duration of full check-in collection runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8.5m
		},
	)
)
