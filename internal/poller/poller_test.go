package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flipAfter returns a predicate that becomes true once d has passed since
// the predicate was created.
func flipAfter(d time.Duration) Predicate {
	start := time.Now()
	return func(context.Context) (bool, error) {
		return time.Since(start) >= d, nil
	}
}

func TestWait_ImmediateSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	err := Wait(context.Background(), time.Second, 10*time.Millisecond, func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "a true predicate must not be polled again")
}

func TestWait_ReturnsWhenPredicateFlips(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	const flip = 50 * time.Millisecond
	const interval = 5 * time.Millisecond
	// Scheduler jitter on a loaded test machine.
	const slack = 20 * time.Millisecond
	flipped := flipAfter(flip)
	var trueCalls, callsAfterTrue atomic.Int32
	pred := func(ctx context.Context) (bool, error) {
		if trueCalls.Load() > 0 {
			callsAfterTrue.Add(1)
		}
		ok, err := flipped(ctx)
		if ok {
			trueCalls.Add(1)
		}
		return ok, err
	}

	// --- Act ---
	start := time.Now()
	err := Wait(context.Background(), time.Second, interval, pred)
	elapsed := time.Since(start)

	// --- Assert ---
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, flip)
	assert.Less(t, elapsed, flip+2*interval+slack, "wait must return within about one interval of the flip")
	assert.Equal(t, int32(1), trueCalls.Load())
	assert.Zero(t, callsAfterTrue.Load(), "the predicate must not be polled after it held")
}

func TestWait_TimesOutWhenPredicateNeverFlips(t *testing.T) {
	t.Parallel()

	const timeout = 60 * time.Millisecond
	start := time.Now()
	err := Wait(context.Background(), timeout, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, timeout, te.Timeout)
	assert.GreaterOrEqual(t, te.Polls, 2)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+100*time.Millisecond)
}

func TestWait_FlipAfterDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	err := Wait(context.Background(), 30*time.Millisecond, 5*time.Millisecond, flipAfter(200*time.Millisecond))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWait_PredicateErrorIsNotTimeout(t *testing.T) {
	t.Parallel()

	boom := errors.New("element detached")
	err := Wait(context.Background(), time.Second, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestWait_BlockingPredicateCutByDeadline(t *testing.T) {
	t.Parallel()

	// A predicate that blocks until its context expires reports the
	// deadline as its error; that is still a timeout, not a failure.
	err := Wait(context.Background(), 40*time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWait_ParentCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Wait(ctx, time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTimeout))
}
