package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rewardscraft/studio/pkg/response"
)

// RateLimitConfig configures the per-client limiter.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	IdleTTL           time.Duration // limiters unused this long are dropped
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	cfg   RateLimitConfig
	limit rate.Limit

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSwept time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter. RequestsPerMinute <= 0 disables limiting.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	if l.cfg.RequestsPerMinute <= 0 {
		return true
	}
	now := time.Now()
	l.mu.Lock()
	if now.Sub(l.lastSwept) > l.cfg.IdleTTL {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > l.cfg.IdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSwept = now
	}
	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	l.mu.Unlock()
	return cl.limiter.AllowN(now, 1)
}

// Middleware returns a gin middleware that limits by client IP.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.RequestsPerMinute))
		c.Header("Retry-After", "1")
		response.TooManyRequests(c, "too many requests, try again shortly")
		c.Abort()
	}
}
