package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xaionaro-go/hwdecpipe/logger"
)

const (
	// DefaultRetryAttempts bounds how many times a transient (ErrAgain)
	// failure is retried before it escalates to a fatal error.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the fixed pause between retry attempts.
	DefaultRetryDelay = 10 * time.Millisecond
)

// RetryTransient runs fn up to attempts times, sleeping delay between the
// attempts, as long as the failure is of the transient ErrAgain class.
// Any other error, or exhausting attempts, stops the loop; the escalation
// to a fatal client-visible error is the caller's business.
func RetryTransient(
	ctx context.Context,
	attempts int,
	delay time.Duration,
	fn func(ctx context.Context) error,
) (_err error) {
	logger.Tracef(ctx, "RetryTransient")
	defer func() { logger.Tracef(ctx, "/RetryTransient: %v", _err) }()

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt != 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.As(err, &ErrAgain{}) {
			return err
		}
		logger.Debugf(ctx, "transient failure (attempt %d/%d): %v", attempt+1, attempts, err)
	}
	return fmt.Errorf("still failing after %d attempts: %w", attempts, err)
}
