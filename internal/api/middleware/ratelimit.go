package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns a per-client rate limiting middleware. Limiters are
// keyed by client IP and allow requestsPerHour sustained with a small
// burst.
func RateLimit(requestsPerHour int) gin.HandlerFunc {
	if requestsPerHour <= 0 {
		requestsPerHour = 100
	}
	limit := rate.Every(time.Hour / time.Duration(requestsPerHour))
	burst := requestsPerHour / 10
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(limit, burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
