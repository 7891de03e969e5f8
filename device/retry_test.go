package device

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryTransientSucceedsWithinBound(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryTransient(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return ErrAgain{}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryTransientExhaustsBound(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryTransient(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return ErrAgain{}
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &ErrAgain{})
	require.Equal(t, 3, calls)
}

func TestRetryTransientDoesNotRetryFatal(t *testing.T) {
	ctx := context.Background()

	fatal := fmt.Errorf("the device fell off the bus")
	calls := 0
	err := RetryTransient(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return fatal
	})
	require.ErrorIs(t, err, fatal)
	require.Equal(t, 1, calls)
}
