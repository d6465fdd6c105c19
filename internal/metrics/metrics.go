package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackstate",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by path and status code.",
	}, []string{"path", "status"})

	SnapshotsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackstate",
		Name:      "snapshots_published_total",
		Help:      "Total number of track snapshots published.",
	})

	SnapshotGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackstate",
		Name:      "snapshot_groups",
		Help:      "Number of track groups in the current snapshot.",
	})

	EncodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackstate",
		Name:      "encode_failures_total",
		Help:      "Total number of snapshots that failed to encode.",
	})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackstate",
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	})

	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackstate",
		Name:      "ws_clients",
		Help:      "Number of connected websocket clients.",
	})

	WSSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trackstate",
		Name:      "ws_skipped_snapshots_total",
		Help:      "Total number of snapshots replaced before a slow websocket client received them.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		SnapshotsPublished,
		SnapshotGroups,
		EncodeFailures,
		RateLimited,
		WSClients,
		WSSkipped,
	)
}
