package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/shared/server/respond"
	"resume-optimizer/internal/shared/telemetry"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	defaultSweepInterval  = time.Minute
)

// RateLimitRule is a token bucket refilled at Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// refill returns the time needed to go from tokens back to a full bucket.
func (r RateLimitRule) refill(tokens float64) time.Duration {
	missing := float64(r.Burst) - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(missing / r.Rate * float64(time.Second)))
}

// RateLimitConfig selects a rule per request via GroupFor; requests whose
// group has no rule pass through.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one bucket per client and group. A bucket that has
// refilled to Burst carries no state, so sweeps drop it.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	sweep     time.Duration
	lastSweep time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
	full   time.Time
}

// NewRateLimiter returns a limiter reading time from now (time.Now if nil).
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets:   make(map[string]*rateBucket),
		now:       now,
		sweep:     defaultSweepInterval,
		lastSweep: now(),
	}
}

type rateLimitedBody struct {
	respond.ErrorResponse
	RetryAfterMs int `json:"retryAfterMs"`
}

// RateLimit limits requests per client IP and group.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		allowed, retryAfter := cfg.Limiter.Allow(strings.TrimSpace(c.ClientIP())+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterMs := int(retryAfter.Milliseconds())
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		telemetry.Warn("http.rate_limited", map[string]any{
			"group":          group,
			"path":           c.Request.URL.Path,
			"request_id":     c.GetString("requestId"),
			"retry_after_ms": retryAfterMs,
		})
		c.Header("Retry-After", strconv.Itoa((retryAfterMs+999)/1000))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitedBody{
			ErrorResponse: respond.ErrorResponse{Error: "Too many requests, try again shortly", Code: "rate_limited"},
			RetryAfterMs:  retryAfterMs,
		})
	}
}

// Allow spends one token from the bucket for key. When the bucket is empty
// it reports how long until the next token arrives.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictFull(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed.Seconds()*rule.Rate)
		b.last = now
	}

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}
	b.full = now.Add(rule.refill(b.tokens))
	if allowed {
		return true, 0
	}
	wait := time.Duration(math.Ceil((1 - b.tokens) / rule.Rate * 1000))
	return false, wait * time.Millisecond
}

// Len reports how many buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// evictFull drops buckets that have refilled since their last request. It
// runs at most once per sweep interval. Callers hold l.mu.
func (l *RateLimiter) evictFull(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweep {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if !now.Before(b.full) {
			delete(l.buckets, key)
		}
	}
}
