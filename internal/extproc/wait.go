// SPDX-License-Identifier: MPL-2.0

package extproc

import (
	"context"
	"fmt"
	"time"
)

type result[T any] struct {
	val T
	err error
}

// BoundedWait runs op on a separate goroutine and waits up to timeout for it.
// If op is still running after timeout, onTimeout is invoked (typically to kill
// and restart a hung daemon) and BoundedWait then waits for op to finish,
// however long that takes. The second return value reports whether recovery
// was needed.
func BoundedWait[T any](
	ctx context.Context,
	timeout time.Duration,
	op func(ctx context.Context) (T, error),
	onTimeout func(),
) (T, bool, error) {
	done := make(chan result[T], 1)
	go func() {
		val, err := op(ctx)
		done <- result[T]{val: val, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.val, false, res.err
	case <-timer.C:
	}

	if onTimeout != nil {
		onTimeout()
	}
	res := <-done
	return res.val, true, res.err
}

// After calls fn on its own goroutine once d has elapsed. The returned cancel
// function prevents fn from running if it has not started yet; it is safe to
// call more than once.
func After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Backoff returns the delay before the given retry attempt (1-based).
type Backoff func(attempt int) time.Duration

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the delay after each retry, starting at base.
func ExponentialBackoff(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return base * time.Duration(1<<(attempt-1))
	}
}

// RetryWithBackoff retries op up to maxAttempts times, sleeping between
// attempts according to backoff. Cancellation of ctx stops the retries.
//
// op returns (retry, err). If retry is false, err is returned immediately
// (nil on success). On exhaustion the last error is returned.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	backoff Backoff,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}

		retry, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}
