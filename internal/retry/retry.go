package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how a call is retried: the total number of attempts
// and, per failed attempt, how long to wait afterwards. Backoff returns
// the delay for the attempt that just failed (including the final one)
// and whether the error is retryable at all; non-retryable errors stop
// the loop immediately and are returned to the caller unchanged.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int, err error) (time.Duration, bool)

	// Sleep waits between attempts. Nil means a context-aware wait;
	// tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ExhaustedError reports that every attempt failed. Unwrap yields the
// error of the last attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs fn under the policy. Each attempt is fresh: nothing is
// carried over between attempts except the error used to pick the
// backoff delay.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		delay, retryable := p.Backoff(attempt, lastErr)
		if !retryable {
			return lastErr
		}

		// The backoff elapses even after the final attempt, so the full
		// documented schedule is honored before reporting exhaustion.
		if delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return &ExhaustedError{Attempts: p.MaxAttempts, Last: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
