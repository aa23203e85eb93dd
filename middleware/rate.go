package middleware

import (
	"context"
	"net"
	"net/http"
	"shop-api/logger"
	"shop-api/response"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more hit for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// visitor is the token bucket of one key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a process-local Limiter with one token bucket per key.
// Each bucket holds max tokens and refills max tokens per window. Buckets idle
// for a full window are full again, so they are swept on access.
type MemoryLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	nextSweep time.Time
}

// NewMemoryLimiter allows bursts of max hits per key, refilled over window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		window:   window,
		now:      time.Now,
		visitors: map[string]*visitor{},
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.window {
				delete(l.visitors, k)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// RedisLimiter shares counters across instances through Redis INCR and EXPIRE.
type RedisLimiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
	prefix string
}

// NewRedisLimiter allows max hits per key in each window.
func NewRedisLimiter(client redis.Cmdable, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window, prefix: "shop:ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.max), nil
}

// clientIP prefers the first X-Forwarded-For hop, then the connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects clients exceeding the limiter with 429. Limiter failures
// let the request through.
func RateLimit(limiter Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable", zap.Error(err))
				allowed = true
			}
			if !allowed {
				response.Fail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
