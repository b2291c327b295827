package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	r        rate.Limit
	burst    int
	ttl      time.Duration
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if kl, ok := rl.limiters[key]; ok {
		kl.seen = time.Now()
		return kl.lim
	}
	// Drop limiters idle past the TTL while we hold the lock anyway.
	now := time.Now()
	for k, v := range rl.limiters {
		if now.Sub(v.seen) > rl.ttl {
			delete(rl.limiters, k)
		}
	}
	lim := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[key] = &keyLimiter{lim: lim, seen: now}
	return lim
}

// RateLimit returns a token-bucket limiter middleware keyed by IP+route.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	rl := &rateLimiter{
		limiters: make(map[string]*keyLimiter),
		r:        r,
		burst:    burst,
		ttl:      2 * time.Minute,
	}
	return func(c *gin.Context) {
		// ClientIP honors the trusted-proxy configuration on the engine,
		// so a forged X-Forwarded-For cannot rotate bucket keys.
		key := c.ClientIP() + "|" + c.FullPath()
		if !rl.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
