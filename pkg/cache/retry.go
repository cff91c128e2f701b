package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with [Retryable] or carries a
// NETWORK_ERROR or TIMEOUT code.
func IsRetryable(err error) bool {
	var re *RetryableError
	if stderrors.As(err, &re) {
		return true
	}
	return errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeTimeout)
}

// Backoff is a retry schedule: Attempts tries, the first pause Delay long
// and doubling after that.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is the schedule used by [RetryWithBackoff].
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// RetryWithBackoff runs fn on [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return RetryWithBackoffN(ctx, DefaultBackoff, fn)
}

// RetryWithBackoffN runs fn until it succeeds, fails permanently or runs out
// of attempts. The last error is returned without its retry marker.
func RetryWithBackoffN(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == attempts {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}

	var re *RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}
