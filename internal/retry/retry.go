// Package retry implements an exponential backoff retry policy for
// network-bound store operations.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/fredcicles/sas/internal/logger"
)

// Options controls the retry schedule.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// InitialSleep is the delay after the first failed attempt. The delay
	// doubles after each subsequent failure up to MaxSleep.
	InitialSleep time.Duration

	// MaxSleep caps the exponential growth of the delay.
	MaxSleep time.Duration
}

// DefaultOptions is the schedule used when no options are provided.
var DefaultOptions = Options{
	MaxAttempts:  5,
	InitialSleep: 500 * time.Millisecond,
	MaxSleep:     16 * time.Second,
}

// AttemptFunc performs a single attempt.
type AttemptFunc func() error

// IsRetriableFunc decides whether an error is worth retrying.
// A nil error must return false.
type IsRetriableFunc func(err error) bool

// WithExponentialBackoff runs attempt until it succeeds or returns a
// non-retriable error, sleeping between attempts with exponentially growing
// delays. Context cancellation interrupts the sleep and aborts immediately.
func WithExponentialBackoff(ctx context.Context, desc string, opts Options, attempt AttemptFunc, isRetriable IsRetriableFunc) error {
	if opts.MaxAttempts <= 0 {
		opts = DefaultOptions
	}

	sleepAmount := opts.InitialSleep
	var lastErr error

	for i := 0; i < opts.MaxAttempts; i++ {
		lastErr = attempt()
		if !isRetriable(lastErr) {
			return lastErr
		}

		logger.Debug("got error %v when %s (attempt #%d), sleeping for %v before retrying", lastErr, desc, i+1, sleepAmount)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepAmount):
		}

		sleepAmount *= 2
		if sleepAmount > opts.MaxSleep {
			sleepAmount = opts.MaxSleep
		}
	}

	return fmt.Errorf("unable to complete %s despite %d attempts: %w", desc, opts.MaxAttempts, lastErr)
}
