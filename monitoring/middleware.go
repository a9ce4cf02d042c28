package monitoring

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware records request counts and durations labelled by route
// pattern, so /posts/1/ and /posts/2/ share a series.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" {
			// Skip collecting metrics from metrics endpoint itself
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		timer := prometheus.NewTimer(HttpRequestDuration.WithLabelValues(path))
		ActiveRequests.Inc()

		c.Next()

		timer.ObserveDuration()
		ActiveRequests.Dec()
		HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
