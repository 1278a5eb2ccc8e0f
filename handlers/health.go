package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// RegisterHealth mounts GET /health (liveness) and GET /ready, which runs
// every check and answers 503 when any of them fails.
func RegisterHealth(rg gin.IRouter, started time.Time, checks map[string]Check) {
	rg.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	rg.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(checks))
		for name, check := range checks {
			deps[name] = check(ctx) == nil
			ready = ready && deps[name]
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(started).String()})
	})
}
