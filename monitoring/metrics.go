package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_requests",
			Help: "Number of requests being served",
		},
	)

	PageCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Rendered pages served from the page cache",
		},
	)

	PageCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Rendered pages that had to be built",
		},
	)
)

// Registry holds every collector of the application. A private registry
// keeps tests that build several servers from double registering.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		ActiveRequests,
		PageCacheHits,
		PageCacheMisses,
	)
}
