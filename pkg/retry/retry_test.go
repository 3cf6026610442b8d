package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int

	err := DoWithLog(context.Background(), fastConfig(5), "postgres", func() error {
		calls++
		if calls < 3 {
			return errors.New("not ready")
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		retried = append(retried, attempt)
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := DoWithLog(context.Background(), fastConfig(3), "redis", func() error {
		calls++
		return errors.New("refused")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "redis: max retry attempts (3) exceeded")
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextDelay_CapsAtMax(t *testing.T) {
	cfg := Config{BackoffFactor: 10, MaxDelay: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, nextDelay(10*time.Millisecond, cfg))
	assert.Equal(t, 20*time.Millisecond, nextDelay(2*time.Millisecond, cfg))
}
