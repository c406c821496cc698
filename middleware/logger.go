package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flappion",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	httpRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flappion",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of the HTTP requests.",
	}, []string{"route", "method", "code"})
)

type LoggerConfig struct {
	DoMetrics bool
	// LogErrorsOnly skips lines for 2xx and 3xx responses.
	LogErrorsOnly bool
}

func Logger(conf LoggerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		// unmatched paths would blow up label cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if conf.DoMetrics {
			httpRequestsDuration.WithLabelValues(route, c.Request.Method).Observe(latency.Seconds())
			httpRequestsCount.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		}

		if conf.LogErrorsOnly && status < 400 {
			return
		}
		user := "-"
		if admin, ok := AdminFrom(c); ok {
			user = admin.Email()
		}
		log.Printf("%d %s %s client=%s user=%s ms=%d", status, c.Request.Method, c.Request.URL.Path, c.ClientIP(), user, latency.Milliseconds())
	}
}
