package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dgraph-io/badger/v4"

	"libraryadmin/internal/apperr"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 5 * time.Millisecond
	defaultJitterFactor = 0.3
)

// retryConfig holds the exponential backoff settings for write conflicts.
type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
}

// retryOnConflict runs fn until it succeeds, fails with anything other than
// badger.ErrConflict, or runs out of attempts.
//
// Retry schedule (default): 0, 5, 10, 20, 40, 80 ms plus up to 30% jitter.
// Exhausted retries surface as a transient store error.
func retryOnConflict(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec // jitter only
			select {
			case <-time.After(delay + time.Duration(jitter)):
			case <-ctx.Done():
				return apperr.Unavailable(ctx.Err())
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, badger.ErrConflict) {
			return translateError(lastErr)
		}
	}

	return apperr.Unavailable(fmt.Errorf("write conflict after %d attempts: %w", cfg.maxAttempts, lastErr))
}

// translateError maps Badger failures onto apperr codes.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, badger.ErrDBClosed) || errors.Is(err, badger.ErrBlockedWrites) {
		return apperr.Unavailable(err)
	}
	return err
}
