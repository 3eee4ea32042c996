package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/config"
)

func TestMemoryLimiter_BudgetPerKey(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Error("fourth request allowed, want rejected")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("other client rejected")
	}

	// One token comes back every window/limit.
	now = now.Add(20 * time.Second)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("request after refill rejected")
	}
}

func TestMemoryLimiter_EvictsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(1, time.Second)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	now = now.Add(10 * time.Second)
	l.Allow(ctx, "c")
	if l.Len() != 1 {
		t.Errorf("Len after idle period = %d, want 1", l.Len())
	}
}

func TestNew_Backends(t *testing.T) {
	rule := config.LimitRule{Limit: 5, WindowSeconds: 60}
	if _, err := New("memory", "api", rule, nil); err != nil {
		t.Errorf("memory: %v", err)
	}
	if _, err := New("valkey", "api", rule, nil); err == nil {
		t.Error("valkey without client should fail")
	}
	if _, err := New("etcd", "api", rule, nil); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestNewValkeyLimiter_ClampsRule(t *testing.T) {
	l := NewValkeyLimiter(nil, "api", 0, 0)
	if l.limit != 1 {
		t.Errorf("limit = %d, want 1", l.limit)
	}
	if l.window != time.Minute {
		t.Errorf("window = %v, want 1m", l.window)
	}
	if l.prefix != "bakchoddost:rl:api:" {
		t.Errorf("prefix = %q", l.prefix)
	}
}
