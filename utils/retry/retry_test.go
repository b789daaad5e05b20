package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly on Sleep so deadline behavior can be tested
// without real waiting.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

func newFakeLoop(opts Options) (*Loop, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	loop := NewLoop(opts)
	loop.clock = clk
	return loop, clk
}

func TestLoop_AttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Attempts: 5, SleepTime: -1})

	var yielded []int
	for loop.Next(ctx) {
		yielded = append(yielded, loop.Attempt())
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, yielded)

	var exhausted *ExhaustedError
	require.ErrorAs(t, loop.Err(), &exhausted)
	assert.Equal(t, 5, exhausted.Attempts)
	assert.EqualError(t, loop.Err(), "retried unsuccessfully 5 times")
	assert.ErrorIs(t, loop.Err(), ErrBudgetExceeded)
}

func TestLoop_TimeoutCarriesConfiguredValue(t *testing.T) {
	ctx := context.Background()
	loop, _ := newFakeLoop(Options{Attempts: -1, Timeout: 10 * time.Second, SleepTime: 3 * time.Second})

	count := 0
	for loop.Next(ctx) {
		count++
	}

	// Attempts start at t=0s, 3s, 6s, 9s; the final sleep is clamped to the
	// deadline and the next attempt is refused.
	assert.Equal(t, 4, count)

	var timeout *TimeoutError
	require.ErrorAs(t, loop.Err(), &timeout)
	assert.Equal(t, 10*time.Second, timeout.Timeout)
	assert.EqualError(t, loop.Err(), "timed out after 10s")
	assert.ErrorIs(t, loop.Err(), ErrBudgetExceeded)
}

func TestLoop_TimeoutEvenSleepMultiple(t *testing.T) {
	ctx := context.Background()
	loop, _ := newFakeLoop(Options{Attempts: -1, Timeout: 10 * time.Second, SleepTime: time.Second})

	count := 0
	for loop.Next(ctx) {
		count++
	}

	// One attempt per second from t=0s through t=9s; t=10s is on the
	// deadline and is refused.
	assert.Equal(t, 10, count)
	assert.ErrorIs(t, loop.Err(), ErrBudgetExceeded)
}

func TestLoop_BreakEarlyLeavesNoError(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Attempts: 5, Timeout: time.Minute, SleepTime: -1})

	for loop.Next(ctx) {
		if loop.Attempt() == 2 {
			break
		}
	}

	assert.Equal(t, 2, loop.Attempt())
	assert.NoError(t, loop.Err())
}

func TestLoop_UnboundedYieldsUntilBreak(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Attempts: -1, SleepTime: -1})

	count := 0
	for loop.Next(ctx) {
		count++
		if count == 100 {
			break
		}
	}

	assert.Equal(t, 100, count)
	assert.NoError(t, loop.Err())
}

func TestLoop_AttemptBoundWinsOverLaterDeadline(t *testing.T) {
	ctx := context.Background()
	loop, _ := newFakeLoop(Options{Attempts: 3, Timeout: time.Hour, SleepTime: time.Second})

	count := 0
	for loop.Next(ctx) {
		count++
	}

	assert.Equal(t, 3, count)
	var exhausted *ExhaustedError
	assert.ErrorAs(t, loop.Err(), &exhausted)
}

func TestLoop_DeadlineWinsOverLargerAttemptBound(t *testing.T) {
	ctx := context.Background()
	loop, _ := newFakeLoop(Options{Attempts: 100, Timeout: 2 * time.Second, SleepTime: time.Second})

	count := 0
	for loop.Next(ctx) {
		count++
	}

	assert.Equal(t, 2, count)
	var timeout *TimeoutError
	assert.ErrorAs(t, loop.Err(), &timeout)
}

func TestLoop_FinalSleepClampedToDeadline(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Timeout: 100 * time.Millisecond, SleepTime: time.Hour})

	start := time.Now()
	count := 0
	for loop.Next(ctx) {
		count++
	}
	elapsed := time.Since(start)

	assert.Equal(t, 1, count)
	assert.Less(t, elapsed, 5*time.Second)
	var timeout *TimeoutError
	assert.ErrorAs(t, loop.Err(), &timeout)
}

func TestLoop_SleepsBetweenAttempts(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Attempts: 3, SleepTime: 50 * time.Millisecond})

	start := time.Now()
	for loop.Next(ctx) {
	}
	elapsed := time.Since(start)

	// Two sleeps between three attempts.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestLoop_ContextCancellationEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(Options{Attempts: -1, SleepTime: time.Hour})

	require.True(t, loop.Next(ctx))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.False(t, loop.Next(ctx))
	assert.ErrorIs(t, loop.Err(), context.Canceled)
}

func TestLoop_DoneStaysDone(t *testing.T) {
	ctx := context.Background()
	loop := NewLoop(Options{Attempts: 1})

	assert.True(t, loop.Next(ctx))
	assert.False(t, loop.Next(ctx))
	err := loop.Err()
	assert.False(t, loop.Next(ctx))
	assert.Same(t, err, loop.Err())
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := Do(ctx, Options{Attempts: 5, SleepTime: -1}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReportsBudgetAndLastError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("still broken")

	err := Do(ctx, Options{Attempts: 3, SleepTime: -1}, func(ctx context.Context) error {
		return sentinel
	})

	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoWithData_ReturnsValue(t *testing.T) {
	ctx := context.Background()
	calls := 0

	got, err := DoWithData(ctx, Options{Attempts: 5, SleepTime: -1}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("not yet")
		}
		return "ready", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.Equal(t, 2, calls)
}

func TestNewLoop_ZeroSleepTimeMeansDefault(t *testing.T) {
	ctx := context.Background()
	loop, clk := newFakeLoop(Options{Attempts: 3})

	start := clk.now
	for loop.Next(ctx) {
	}

	// Two default sleeps between three attempts.
	assert.Equal(t, 2*DefaultSleepTime, clk.now.Sub(start))
}

func TestNewLoop_NegativeSleepTimeMeansNoDelay(t *testing.T) {
	ctx := context.Background()
	loop, clk := newFakeLoop(Options{Attempts: 3, SleepTime: -1})

	start := clk.now
	for loop.Next(ctx) {
	}

	assert.True(t, clk.now.Equal(start))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, -1, opts.Attempts)
	assert.Equal(t, time.Duration(0), opts.Timeout)
	assert.Equal(t, DefaultSleepTime, opts.SleepTime)
}
