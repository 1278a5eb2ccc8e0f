package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"github.com/mindmap/mindmap-server/pkg/metrics"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request and observes its latency.
// 5xx responses log at error, 4xx at warn, the rest at info.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if u, ok := identity.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("user", u.ID))
		}
		log := logger.L()
		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
