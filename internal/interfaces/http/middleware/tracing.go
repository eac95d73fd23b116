package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request. Health checks and swagger
// assets are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health" && !strings.HasPrefix(r.URL.Path, "/swagger")
	}))
}

// SpanEnricher adds the request id, caller and project to the server span
// and marks server errors. It runs after authentication.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		attrs := make([]attribute.KeyValue, 0, 3)
		if id := GetRequestID(c); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if uid := c.GetString(UserIDKey); uid != "" {
			attrs = append(attrs, attribute.String("user_id", uid))
		}
		if pid, ok := GetProjectID(c); ok {
			attrs = append(attrs, attribute.String("project_id", pid.String()))
		}
		span.SetAttributes(attrs...)
		if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
