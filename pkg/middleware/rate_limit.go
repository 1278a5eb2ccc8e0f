package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/pkg/metrics"
	"golang.org/x/time/rate"
)

// limiters is a per-key token-bucket store owned by one middleware instance.
type limiters struct {
	m     sync.Map // map[string]*rate.Limiter
	rps   float64
	burst int
}

func (l *limiters) get(key string) *rate.Limiter {
	if v, ok := l.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.m.LoadOrStore(key, rate.NewLimiter(rate.Limit(l.rps), l.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// The key is the authenticated user when AuthMiddleware ran first, otherwise the client IP.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := &limiters{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(limiterKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
