// Package ratelimit enforces per-client request budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/config"
	"github.com/valkey-io/valkey-go"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New builds the limiter for rule on the configured backend. client is only
// used by the valkey backend.
func New(backend, name string, rule config.LimitRule, client valkey.Client) (Limiter, error) {
	switch backend {
	case "", "memory":
		return NewMemoryLimiter(rule.Limit, rule.Window()), nil
	case "valkey":
		if client == nil {
			return nil, fmt.Errorf("valkey rate limit backend requires a valkey client")
		}
		return NewValkeyLimiter(client, name, rule.Limit, rule.Window()), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend: %s", backend)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a token bucket per key refilling limit tokens per window.
// Keys idle for longer than two windows are evicted.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	lastGC   time.Time
}

// NewMemoryLimiter allows limit requests per window for each key.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     2 * window,
		now:      time.Now,
	}
}

// Allow implements Limiter. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// Len reports how many keys are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// ValkeyLimiter is a fixed-window counter shared by every server instance.
type ValkeyLimiter struct {
	client valkey.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewValkeyLimiter allows limit requests per window for each key, counted in
// Valkey under "bakchoddost:rl:<name>:".
func NewValkeyLimiter(client valkey.Client, name string, limit int, window time.Duration) *ValkeyLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ValkeyLimiter{
		client: client,
		prefix: "bakchoddost:rl:" + name + ":",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow implements Limiter with INCR followed by EXPIRE on the first hit.
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	k := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	n, err := l.client.Do(ctx, l.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		secs := int64(l.window/time.Second) + 1
		if err := l.client.Do(ctx, l.client.B().Expire().Key(k).Seconds(secs).Build()).Error(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}
