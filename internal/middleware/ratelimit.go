package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/response"
)

// Window is the state of one fixed-window counter after a hit.
type Window struct {
	Count   int64
	ResetAt time.Time
}

// Store counts hits per key in fixed windows.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (Window, error)
}

// RateLimiter implements a per-IP fixed window rate limiter.
type RateLimiter struct {
	store  Store
	prefix string
	limit  int
	window time.Duration
	code   response.ErrCode
	log    zerolog.Logger
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
// Each tier uses its own prefix so counters do not collide; code is sent
// when the limit is exceeded.
func NewRateLimiter(store Store, prefix string, limit int, window time.Duration, code response.ErrCode, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
		code:   code,
		log:    log,
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP and
// sets the RateLimit-* headers. A failing store lets the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		w, err := rl.store.Hit(c.Request.Context(), rl.prefix+ip, rl.window)
		if err != nil {
			rl.log.Warn().Err(err).Str("ip", ip).Str("limiter", rl.prefix).Msg("Rate limit store unavailable, allowing request")
			c.Next()
			return
		}

		remaining := int64(rl.limit) - w.Count
		if remaining < 0 {
			remaining = 0
		}
		reset := strconv.Itoa(secondsUntil(w.ResetAt))

		c.Header("RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", reset)

		if w.Count > int64(rl.limit) {
			c.Header("Retry-After", reset)
			response.AbortFail(c, http.StatusTooManyRequests, rl.code)
			return
		}

		c.Next()
	}
}

func secondsUntil(t time.Time) int {
	s := int(math.Ceil(time.Until(t).Seconds()))
	if s < 0 {
		return 0
	}
	return s
}

// WriteMethods reports whether the request mutates state.
func WriteMethods(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Only runs mw for requests matching match.
func Only(match func(*gin.Context) bool, mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !match(c) {
			c.Next()
			return
		}
		mw(c)
	}
}

// ─── Memory store ────────────────────────────────────────────────────────────

type counter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process. Counters are not shared between
// instances.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its cleanup loop.
func NewMemoryStore() *MemoryStore {
	s := newMemoryStore(time.Now)

	// Cleanup expired windows every minute.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*counter),
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (Window, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctr, ok := s.counters[key]
	if !ok || !now.Before(ctr.resetAt) {
		ctr = &counter{resetAt: now.Add(window)}
		s.counters[key] = ctr
	}
	ctr.count++

	return Window{Count: ctr.count, ResetAt: ctr.resetAt}, nil
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ctr := range s.counters {
		if !now.Before(ctr.resetAt) {
			delete(s.counters, key)
		}
	}
}

// ─── Redis store ─────────────────────────────────────────────────────────────

// hitScript increments the counter and starts its window on the first hit.
// It returns the count and the milliseconds left in the window.
var hitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore keeps counters in Redis so every instance shares them.
type RedisStore struct {
	rdb redis.Scripter
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb redis.Scripter) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (Window, error) {
	res, err := hitScript.Run(ctx, s.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, errors.Wrap(err, "rate limit hit")
	}
	if len(res) != 2 {
		return Window{}, errors.Errorf("rate limit hit: unexpected reply %v", res)
	}
	return Window{
		Count:   res[0],
		ResetAt: time.Now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
