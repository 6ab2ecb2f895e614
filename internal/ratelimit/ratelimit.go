// Package ratelimit paces outbound calls to external services. Every
// target gets a minimum spacing between consecutive requests and an
// optional per-run call budget.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/tennews/internal/logger"
)

type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        map[string]time.Time
	counts      map[string]int
	limits      map[string]int
}

// New creates a limiter enforcing minInterval between calls to the
// same target.
func New(minInterval time.Duration) *Limiter {
	if minInterval < 0 {
		minInterval = 0
	}
	return &Limiter{
		minInterval: minInterval,
		last:        make(map[string]time.Time),
		counts:      make(map[string]int),
		limits:      make(map[string]int),
	}
}

// SetLimit caps the number of calls to target for this run. Zero or
// negative means unlimited.
func (l *Limiter) SetLimit(target string, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits[target] = max
}

// Wait blocks until target may be called again, charges the budget,
// and returns an error when the per-run budget is spent or the
// context is cancelled.
func (l *Limiter) Wait(ctx context.Context, target string) error {
	l.mu.Lock()
	if max := l.limits[target]; max > 0 && l.counts[target] >= max {
		used := l.counts[target]
		l.mu.Unlock()
		return fmt.Errorf("call budget for %s exhausted (%d/%d)", target, used, max)
	}

	var wait time.Duration
	if last, ok := l.last[target]; ok {
		if since := time.Since(last); since < l.minInterval {
			wait = l.minInterval - since
		}
	}
	// Reserve the slot before sleeping so concurrent callers space out.
	l.last[target] = time.Now().Add(wait)
	l.counts[target]++
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Stats returns per-target usage counters.
func (l *Limiter) Stats() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.counts))
	for target, n := range l.counts {
		out[target] = n
	}
	return out
}

// PrintStats logs current usage.
func (l *Limiter) PrintStats() {
	l.mu.Lock()
	type usage struct {
		target string
		used   int
		limit  int
	}
	usages := make([]usage, 0, len(l.counts))
	for target, n := range l.counts {
		usages = append(usages, usage{target, n, l.limits[target]})
	}
	l.mu.Unlock()

	for _, u := range usages {
		logger.Info("outbound call usage", "target", u.target, "used", u.used, "limit", u.limit)
	}
}

// TargetLimiter binds a limiter to one target so callers only see a
// Wait(ctx) method.
type TargetLimiter struct {
	l      *Limiter
	target string
}

// For returns the limiter view for one target.
func (l *Limiter) For(target string) *TargetLimiter {
	return &TargetLimiter{l: l, target: target}
}

func (t *TargetLimiter) Wait(ctx context.Context) error {
	return t.l.Wait(ctx, t.target)
}
