package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/internal/retry"
)

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}
}

func TestPolicyDo(t *testing.T) {
	t.Parallel()

	t.Run("returns on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := fastPolicy(3).Do(context.Background(), func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := fastPolicy(5).Do(context.Background(), func(ctx context.Context, attempt int) error {
			calls++
			assert.Equal(t, calls, attempt)
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error on exhaustion", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("still broken")
		calls := 0
		err := fastPolicy(3).Do(context.Background(), func(ctx context.Context, attempt int) error {
			calls++
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		policy := retry.Policy{MaxAttempts: 10, BaseDelay: time.Hour}
		err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Policy{}.Do(context.Background(), func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}
