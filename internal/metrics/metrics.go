package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropskills_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropskills_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// GenerationsTotal counts AI generations by kind and outcome
	// (ok, invalid, upstream_error).
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropskills_ai_generations_total",
			Help: "Total number of AI generations",
		},
		[]string{"kind", "outcome"},
	)
	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropskills_llm_call_duration_seconds",
			Help:    "Latency of calls to the LLM provider",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"kind"},
	)
)

// Middleware records one sample per request, labelled with the route
// pattern rather than the raw path.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func ObserveGeneration(kind, outcome string, d time.Duration) {
	GenerationsTotal.WithLabelValues(kind, outcome).Inc()
	if d > 0 {
		LLMDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
