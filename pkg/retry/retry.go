// Package retry implements the Notification Relay's fixed backoff
// schedule (spec.md §4.6: "1 s, 2 s, 4 s, 8 s, 16 s; cap 5 attempts").
package retry

import (
	"context"
	"time"
)

// Schedule is the fixed delay before each retry attempt (index 0 is the
// delay before the second attempt, since the first attempt is immediate).
var Schedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

// MaxAttempts is the total number of calls made, including the first.
var MaxAttempts = len(Schedule) + 1

// Do calls fn up to MaxAttempts times, sleeping per Schedule between
// attempts, as long as shouldRetry(err) reports true. It returns as soon
// as fn succeeds or shouldRetry says the last error is final.
func Do(ctx context.Context, shouldRetry func(error) bool, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !shouldRetry(err) {
			return err
		}
		if attempt == MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Schedule[attempt]):
		}
	}
	return err
}
