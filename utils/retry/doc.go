// Package retry provides a retry/timeout loop that encapsulates the
// "keep trying until it works or the budget runs out" pattern.
//
// The loop hands out numbered attempts one at a time. The caller does its
// own work per attempt and breaks out of the loop on success; the loop only
// decides whether another attempt may start, sleeping a fixed interval
// between attempts and enforcing an attempt-count ceiling and/or a
// wall-clock deadline.
//
// Basic Usage:
//
//	loop := retry.NewLoop(retry.Options{Attempts: 5, Timeout: time.Minute, SleepTime: time.Second})
//	for loop.Next(ctx) {
//	    if serviceIsUp() {
//	        break
//	    }
//	}
//	if err := loop.Err(); err != nil {
//	    // budget ran out before the caller broke out
//	}
//
// Breaking out of the loop early never produces an error. If the loop stops
// on its own, Err reports which budget ran out: a *TimeoutError when the
// wall-clock deadline passed, or an *ExhaustedError when the attempt count
// was used up. Both match errors.Is(err, retry.ErrBudgetExceeded).
//
// Bounds:
//
//   - Attempts < 1 means no attempt limit.
//   - Timeout <= 0 means no deadline.
//   - SleepTime is the fixed delay between attempts; there is no backoff
//     and no jitter. Zero means the one-second default; a negative value
//     disables the delay.
//
// With both bounds disabled the loop runs until the caller breaks out or
// the context is cancelled.
//
// Function Wrappers:
//
// Do and DoWithData run a function under a loop until it returns nil:
//
//	err := retry.Do(ctx, retry.Options{Timeout: 30 * time.Second, SleepTime: time.Second}, func(ctx context.Context) error {
//	    return ping(ctx)
//	})
//
//	addr, err := retry.DoWithData(ctx, retry.DefaultOptions(), func(ctx context.Context) (string, error) {
//	    return resolve(ctx, host)
//	})
//
// Context Support:
//
// Next takes a context and the between-attempt sleep is cancellable; a
// cancelled context ends the loop with the context's error.
//
// A Loop is consumed once and is not safe for concurrent use; every caller
// creates its own.
package retry
