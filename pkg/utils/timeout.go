package utils

import (
	"context"
	"time"
)

// WithTimeout is the single helper every service uses to bound a
// synchronous downstream call to the budgets in spec.md §5 ("8 s on
// synchronous calls", "DB statement 5 s", "Bot API call 5 s").
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
