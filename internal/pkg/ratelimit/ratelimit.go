// Package ratelimit caps how often a client may call the public endpoints.
// Counters live in Redis when configured so every replica shares them.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

var log = logger.Named("ratelimit")

// Limiter counts hits per key in fixed one-minute windows.
type Limiter interface {
	// Allow records one hit for key. When the window is full it returns
	// false and how long until the next window opens.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Check and increment in one round trip so concurrent requests cannot
// both pass on the last free slot.
const windowLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current + 1 > limit then
    return {0, current}
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end
return {1, newVal}
`

// RedisLimiter shares windows across replicas.
type RedisLimiter struct {
	redis  *redis.Client
	script *redis.Script
	limit  int
	now    func() time.Time
}

// NewRedisLimiter allows perMinute hits per key.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		redis:  client,
		script: redis.NewScript(windowLuaScript),
		limit:  perMinute,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := r.now()
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, now.Unix()/60)

	result, err := r.script.Run(ctx, r.redis, []string{bucket}, r.limit, 120).Slice()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if result[0].(int64) == 1 {
		return true, 0, nil
	}
	return false, untilNextMinute(now), nil
}

// MemoryLimiter keeps windows in process.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  int64
	buckets map[string]int
	now     func() time.Time
}

// NewMemoryLimiter allows perMinute hits per key.
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{limit: perMinute, buckets: map[string]int{}, now: time.Now}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := m.now()
	window := now.Unix() / 60

	m.mu.Lock()
	defer m.mu.Unlock()
	if window != m.window {
		m.window = window
		m.buckets = map[string]int{}
	}
	if m.buckets[key] >= m.limit {
		return false, untilNextMinute(now), nil
	}
	m.buckets[key]++
	return true, 0, nil
}

func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}

// Middleware rejects requests over the limit with 429. Clients are keyed by
// path and remote address. A limiter error lets the request through.
func Middleware(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Path + ":" + clientIP(r)
			ok, wait, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				secs := int(wait.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httputil.ErrorCode(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, try again shortly")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the peer address. It is only the real client when RealIP ran
// behind a trusted proxy; otherwise forwarding headers are ignored.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
