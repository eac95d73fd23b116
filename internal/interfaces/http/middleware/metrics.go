package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qbic/datamanager/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics records request counts and latencies per route
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	requests, err := telemetry.NewCounter(meter, "http_server_requests_total", "Number of handled HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter, "http_server_request_duration_seconds", "HTTP request latency", "s", httpDurationBuckets)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
			attribute.String("http.status_class", StatusClass(c.Writer.Status())),
		}
		ctx := c.Request.Context()
		requests.Add(ctx, 1, attrs...)
		duration.RecordDuration(ctx, time.Since(start), attrs...)
	}, nil
}

// StatusClass groups status codes into 2xx, 4xx...
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
