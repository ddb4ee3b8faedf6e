package app

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sisemasexp/portal/internal/ctxutil"
	"github.com/sisemasexp/portal/internal/logger"
	"github.com/sisemasexp/portal/internal/metrics"
)

// contentSecurityPolicy allows the site's own assets plus the Bootstrap CDN.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://cdn.jsdelivr.net; " +
	"style-src 'self' https://cdn.jsdelivr.net; " +
	"img-src 'self' data:; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'; " +
	"form-action 'self'"

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// requestContextMiddleware stores the request ID and client IP in the
// request context. A missing ID is generated and echoed back.
func requestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID == "" {
			requestID = ctxutil.NewRequestID()
		}
		c.Header("X-Request-Id", requestID)

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug. Requests are also counted
// per route template so that /eliminar/:id stays one series.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m != nil {
			m.RecordHTTPRequest(method, route, strconv.Itoa(status), duration)
		}

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_route", route).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds())

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			entry.ErrorContext(ctx, "HTTP request failed")
		case status >= 400 && status != 404:
			entry.WarnContext(ctx, "HTTP request rejected")
		case status == 404:
			entry.DebugContext(ctx, "HTTP request not found")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}
