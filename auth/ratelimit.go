package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	// LoginWindow is the rate-limit window for the login endpoint.
	LoginWindow = 15 * time.Minute
	// LoginMaxAttempts per key per window.
	LoginMaxAttempts = 5
)

// RateLimitStore counts attempts per key inside a reset-on-expiry window: the
// count restarts at 1 once the window's first call is older than the window
// length. It is not a rolling log.
type RateLimitStore interface {
	Incr(key string, window time.Duration) (int, error)
}

// Limiter gates the login endpoint per (identity, origin) key. It is checked
// before credential verification and is independent of the per-account
// lockout.
type Limiter struct {
	store RateLimitStore
	max   int
}

func NewLimiter(store RateLimitStore, max int) *Limiter {
	return &Limiter{store: store, max: max}
}

// Allow records one attempt and reports whether it is within the limit.
func (l *Limiter) Allow(key string) (bool, error) {
	count, err := l.store.Incr(key, LoginWindow)
	if err != nil {
		return false, errors.Wrap(err, "rate limit increment")
	}
	return count <= l.max, nil
}

// LoginKey builds the composite limiter key for a login attempt.
func LoginKey(email, clientIP string) string {
	return strings.ToLower(email) + "|" + clientIP
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// MemoryRateLimitStore is the process-local store. Concurrent increments on
// the same key are serialized so the throttle never undercounts.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     Clock
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{entries: map[string]*rateLimitEntry{}, now: time.Now}
}

func (m *MemoryRateLimitStore) Incr(key string, window time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	entry, ok := m.entries[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		m.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return 1, nil
	}
	entry.count++
	return entry.count, nil
}

// RedisRateLimitStore shares the counters across processes. INCR plus an
// expiry set on the window's first call gives the same reset-on-expiry
// semantics as the in-memory store.
type RedisRateLimitStore struct {
	inner *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{inner: client}
}

func (r *RedisRateLimitStore) Incr(key string, window time.Duration) (int, error) {
	ctx := context.Background()
	count, err := r.inner.Incr(ctx, redisKey(key)).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.inner.Expire(ctx, redisKey(key), window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

func redisKey(key string) string {
	return fmt.Sprintf("login_attempts:%s", key)
}
