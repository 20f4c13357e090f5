// Package wait provides the bounded poll used wherever the UI settles
// asynchronously: evaluate a condition at a fixed pace until it holds or a
// timeout elapses.
package wait

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is used when a caller passes a non-positive interval.
const DefaultInterval = 250 * time.Millisecond

// Condition reports whether the awaited state has been reached. A non-nil
// error stops polling immediately.
type Condition func(ctx context.Context) (bool, error)

// Until evaluates cond until it returns true, returns an error, or timeout
// elapses. Timing out is not an error: it yields (false, nil). Cancellation
// of the parent context is returned as ctx.Err().
func Until(ctx context.Context, timeout, interval time.Duration, cond Condition) (bool, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(pollCtx); err != nil {
			// Wait fails early when the next token would land past the
			// deadline; both that and the deadline itself mean timeout.
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		}
		ok, err := cond(pollCtx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// A condition cut short by the poll deadline is a timeout.
			if pollCtx.Err() != nil {
				return false, nil
			}
			return false, err
		}
		if ok {
			return true, nil
		}
		if pollCtx.Err() != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		}
	}
}

// Remaining returns the time left before ctx's deadline, capped at limit.
// Without a deadline it returns limit.
func Remaining(ctx context.Context, limit time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return limit
	}
	left := time.Until(deadline)
	if left < 0 {
		return 0
	}
	if left < limit {
		return left
	}
	return limit
}
