package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

const (
	defaultRateLimitClients = 10000
	rateLimiterIdleTTL      = 10 * time.Minute
)

// RateLimitConfig configures per-client token buckets.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// MaxClients bounds the tracked clients; the least recently seen client
	// is forgotten first. Zero means 10000.
	MaxClients int
}

// clientLimiters keeps one limiter per client key. Idle entries expire.
type clientLimiters struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newClientLimiters(cfg RateLimitConfig) *clientLimiters {
	size := cfg.MaxClients
	if size <= 0 {
		size = defaultRateLimitClients
	}
	return &clientLimiters{
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, rateLimiterIdleTTL),
		limit:    rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
	}
}

// reserve takes one token for key. When none is available it returns false
// and how long the client should wait.
func (l *clientLimiters) reserve(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the idle TTL.
	l.limiters.Add(key, lim)
	l.mu.Unlock()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimit rejects clients, keyed by gin's ClientIP, that exceed cfg with
// 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiters := newClientLimiters(cfg)

	return func(c *gin.Context) {
		ok, wait := limiters.reserve(c.ClientIP(), time.Now())
		if ok {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		if pkg.IsHTMX(c) {
			pkg.TriggerToast(c, notify.Toast{Type: notify.TypeError, Message: "Too many requests, slow down"})
			c.Header(pkg.HeaderHXReswap, "none")
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.Response{
			Code:    http.StatusTooManyRequests,
			Message: "too many requests",
		})
	}
}
