package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StreamMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_stream_messages_total",
		Help: "Push messages routed by type and outcome",
	}, []string{"type", "outcome"})
	SnapshotRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_snapshot_refresh_total",
		Help: "Bulk refreshes by source and outcome",
	}, []string{"source", "outcome"})
	ZonesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_zones_skipped_total",
		Help: "Zones dropped during refresh because their geometry failed to decode",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_api_requests_total",
		Help: "Upstream REST calls by operation and outcome",
	}, []string{"op", "outcome"})
	AlertsPushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_alerts_pushed_total",
		Help: "Geofence alerts pushed into the feed",
	})
)

func init() {
	prometheus.MustRegister(StreamMessagesTotal)
	prometheus.MustRegister(SnapshotRefreshTotal)
	prometheus.MustRegister(ZonesSkippedTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(AlertsPushedTotal)
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
