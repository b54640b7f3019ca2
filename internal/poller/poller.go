// Package poller implements bounded-time waiting for an observable condition.
//
// Wait separates the two ways a check can go wrong: the condition never
// became true in time (a *TimeoutError, matching ErrTimeout), or checking it
// failed outright (the predicate's own error, returned unchanged).
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultInterval is used when Wait is given a non-positive interval.
const DefaultInterval = 100 * time.Millisecond

// ErrTimeout is matched by every *TimeoutError.
var ErrTimeout = errors.New("condition not met before deadline")

// Predicate reports whether the awaited condition currently holds. The
// context it receives expires at the wait deadline.
type Predicate func(ctx context.Context) (bool, error)

// TimeoutError reports a condition that never became true.
type TimeoutError struct {
	Timeout time.Duration
	Polls   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("condition not met within %s (%d polls)", e.Timeout, e.Polls)
}

// Is makes errors.Is(err, ErrTimeout) hold.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Wait evaluates pred immediately and then once per interval until it returns
// true or timeout elapses. It returns nil as soon as a poll observes the
// condition.
func Wait(ctx context.Context, timeout, interval time.Duration, pred Predicate) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	polls := 0
	for {
		polls++
		ok, err := pred(waitCtx)
		if ok && err == nil {
			return nil
		}
		if err != nil {
			if waitCtx.Err() == nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Timeout: timeout, Polls: polls}
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Timeout: timeout, Polls: polls}
		case <-ticker.C:
		}
	}
}
