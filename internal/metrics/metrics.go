// Package metrics マップパイプラインのPrometheusメトリクス
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ジオコーディング
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "critterly_geocode_requests_total",
			Help: "Total number of geocode requests by provider and result",
		},
		[]string{"provider", "result"}, // result: success, failure, rejected, cache_hit
	)

	GeocodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "critterly_geocode_duration_seconds",
			Help:    "Duration of upstream geocode calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "critterly_geocode_circuit_breaker_state",
			Help: "Geocoder circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// マップセッション
	MapSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "critterly_map_sessions_active",
			Help: "Number of mounted map sessions",
		},
	)

	MarkersRendered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "critterly_markers_rendered",
			Help:    "Number of markers placed per index build",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	UnplacedPosts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "critterly_unplaced_posts_total",
			Help: "Total number of posts dropped from the map because their address failed to resolve",
		},
	)
)
