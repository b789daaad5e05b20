package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultSleepTime is the delay between attempts when none is configured.
const DefaultSleepTime = 1 * time.Second

// ErrBudgetExceeded is matched by every error the loop produces when a
// retry budget runs out, regardless of which bound was hit.
var ErrBudgetExceeded = errors.New("retry budget exceeded")

// TimeoutError reports that the wall-clock budget ran out before the caller
// broke out of the loop. Timeout is the configured budget, not the measured
// elapsed time.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrBudgetExceeded }

// ExhaustedError reports that the attempt budget ran out before the caller
// broke out of the loop.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retried unsuccessfully %d times", e.Attempts)
}

func (e *ExhaustedError) Unwrap() error { return ErrBudgetExceeded }

// Options configures a Loop.
type Options struct {
	// Attempts is the maximum number of attempts the loop will hand out.
	// A value below 1 means no attempt limit.
	Attempts int

	// Timeout is the wall-clock budget for the whole sequence, measured
	// from the first call to Next. Zero or negative means no deadline.
	Timeout time.Duration

	// SleepTime is the fixed delay between the end of one attempt and the
	// start of the next. Zero means DefaultSleepTime; a negative value
	// means no delay. When a deadline is set the final sleep is clamped
	// to the time remaining.
	SleepTime time.Duration
}

// DefaultOptions returns options with no bounds and a one-second sleep
// between attempts.
func DefaultOptions() Options {
	return Options{Attempts: -1, SleepTime: DefaultSleepTime}
}

// Loop hands out numbered attempts until a budget runs out or the caller
// stops asking. It is consumed once and must not be shared across
// goroutines.
type Loop struct {
	opts     Options
	clock    clock
	deadline time.Time
	attempt  int
	started  bool
	done     bool
	err      error
}

// NewLoop creates a loop for the given options. The deadline starts
// counting at the first call to Next, not here.
func NewLoop(opts Options) *Loop {
	if opts.SleepTime == 0 {
		opts.SleepTime = DefaultSleepTime
	}
	return &Loop{opts: opts, clock: systemClock{}}
}

// Next reports whether another attempt may start. It blocks for the
// configured sleep between attempts; a cancelled context ends the loop
// with the context's error.
func (l *Loop) Next(ctx context.Context) bool {
	if l.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		return l.fail(err)
	}
	if !l.started {
		l.started = true
		if l.opts.Timeout > 0 {
			l.deadline = l.clock.Now().Add(l.opts.Timeout)
		}
		return l.yield()
	}
	// The caller came back for more after attempt l.attempt.
	if l.opts.Attempts >= 1 && l.attempt >= l.opts.Attempts {
		return l.fail(&ExhaustedError{Attempts: l.opts.Attempts})
	}
	if l.expired() {
		return l.fail(&TimeoutError{Timeout: l.opts.Timeout})
	}
	if err := l.sleep(ctx); err != nil {
		return l.fail(err)
	}
	return l.yield()
}

// Attempt returns the number of the current attempt, starting at 1 after
// the first successful Next.
func (l *Loop) Attempt() int { return l.attempt }

// Err returns the error that ended the loop, or nil while the loop is
// still live or when the caller broke out on its own.
func (l *Loop) Err() error { return l.err }

func (l *Loop) yield() bool {
	if l.expired() {
		return l.fail(&TimeoutError{Timeout: l.opts.Timeout})
	}
	l.attempt++
	return true
}

// expired reports whether the deadline has passed. Comparison is >=: an
// attempt whose start coincides with the deadline is already too late.
func (l *Loop) expired() bool {
	return !l.deadline.IsZero() && !l.clock.Now().Before(l.deadline)
}

func (l *Loop) sleep(ctx context.Context) error {
	d := l.opts.SleepTime
	if !l.deadline.IsZero() {
		if remaining := l.deadline.Sub(l.clock.Now()); remaining < d {
			d = remaining
		}
	}
	if d <= 0 {
		return ctx.Err()
	}
	return l.clock.Sleep(ctx, d)
}

func (l *Loop) fail(err error) bool {
	l.err = err
	l.done = true
	return false
}

// Do runs fn under a fresh loop until it returns nil or the budget runs
// out. The returned error matches ErrBudgetExceeded and, when fn has
// failed at least once, also matches the last error fn returned.
func Do(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	_, err := DoWithData(ctx, opts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoWithData is Do for functions that produce a value.
func DoWithData[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	loop := NewLoop(opts)
	for loop.Next(ctx) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	var zero T
	if lastErr != nil {
		return zero, errors.Join(loop.Err(), lastErr)
	}
	return zero, loop.Err()
}
