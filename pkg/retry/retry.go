package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns the backoff used for startup connections.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// AttemptFunc is invoked after a failed attempt that will be retried.
type AttemptFunc func(attempt int, err error, nextDelay time.Duration)

// Do runs fn with exponential backoff until it succeeds, attempts run out,
// or ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog is Do with a label prefixed to errors and a hook called before
// each backoff sleep.
func DoWithLog(ctx context.Context, cfg Config, name string, fn func() error, onRetry AttemptFunc) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wrap(name, abortErr(attempt-1, err, lastErr))
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return wrap(name, abortErr(attempt, ctx.Err(), lastErr))
		case <-timer.C:
		}

		delay = nextDelay(delay, cfg)
	}

	return wrap(name, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr))
}

func nextDelay(current time.Duration, cfg Config) time.Duration {
	next := time.Duration(float64(current) * cfg.BackoffFactor)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

func abortErr(attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("retry aborted: %w", ctxErr)
}

func wrap(name string, err error) error {
	if name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
