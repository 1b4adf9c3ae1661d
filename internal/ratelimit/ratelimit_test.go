package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatalf("fourth attempt should be blocked")
	}
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "a"); !allowed {
		t.Fatalf("first attempt for a should pass")
	}
	if allowed, _ := limiter.Allow(ctx, "b"); !allowed {
		t.Fatalf("b must not share a's window")
	}
	if allowed, _ := limiter.Allow(ctx, "a"); allowed {
		t.Fatalf("second attempt for a should be blocked")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	limiter := NewMemoryLimiter(1, 10*time.Millisecond)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "x"); !allowed {
		t.Fatalf("first attempt should pass")
	}
	if allowed, _ := limiter.Allow(ctx, "x"); allowed {
		t.Fatalf("second attempt inside window should block")
	}

	time.Sleep(15 * time.Millisecond)
	if allowed, _ := limiter.Allow(ctx, "x"); !allowed {
		t.Fatalf("attempt after window expiry should pass")
	}
}
