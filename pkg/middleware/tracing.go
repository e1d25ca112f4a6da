package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/projecthub/pkg/tracing"
)

// TracingMiddleware 为每个请求创建 span，路由参数中的项目与文档 ID 作为属性记录.
// 只有 5xx 标记为错误，4xx 属于调用方问题.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("client.address", c.ClientIP()),
		}

		for _, p := range []string{"projectId", "id", "fileId", "documentId"} {
			if v := c.Param(p); v != "" {
				attrs = append(attrs, attribute.String("projecthub."+p, v))
			}
		}

		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.response.status_code", status),
			attribute.String("projecthub.role", GetRole(c).String()),
		)

		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
