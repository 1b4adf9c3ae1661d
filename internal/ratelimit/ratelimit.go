// Package ratelimit throttles login attempts per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter reports whether another attempt is allowed for key. Allow is
// expected to count the attempt as a side effect.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// MemoryLimiter is a fixed-window in-process limiter. It is the default
// when no Redis address is configured; counts reset when the process
// restarts and are not shared between replicas.
type MemoryLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.start) >= l.window {
		l.counts[key] = &windowCount{start: now, n: 1}
		l.sweep(now)
		return true, nil
	}
	wc.n++
	return wc.n <= l.max, nil
}

// sweep drops expired windows. Called with the lock held, only on the
// new-window path so hot keys do not pay for it.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, wc := range l.counts {
		if now.Sub(wc.start) >= l.window {
			delete(l.counts, key)
		}
	}
}

func (l *MemoryLimiter) Close() error { return nil }
