package shell

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/FrenchMajesty/remote-shell/utils/logger"
)

// DefaultTimeout is the time budget applied to a spawned process when the
// caller does not set one. Callers must override it for processes expected
// to run longer.
const DefaultTimeout = 1 * time.Hour

// Options configures a spawned process. The zero value captures both output
// streams and applies DefaultTimeout.
type Options struct {
	// Env holds extra environment variables for the process.
	Env map[string]string

	// Dir is the working directory. Backends that cannot honor it (remote
	// shells) ignore it.
	Dir string

	// Timeout is the time budget for the whole process. Zero applies
	// DefaultTimeout; a negative value disables the budget.
	Timeout time.Duration

	// Signal is sent first when the budget is blown, before escalating to a
	// kill. Defaults to SIGABRT so a local process can drop a core. Remote
	// backends may not support signal delivery and go straight to kill.
	Signal os.Signal

	// Stdout receives the process's standard output. When nil the stream is
	// captured and returned by Communicate.
	Stdout io.Writer

	// Stderr receives the process's standard error. When nil the stream is
	// captured and returned by Communicate.
	Stderr io.Writer

	// CombineStderr folds standard error into the standard output stream.
	CombineStderr bool

	// Logger receives per-process debug logging. Nil disables it.
	Logger logger.Logger
}

// EffectiveTimeout resolves the Timeout field against DefaultTimeout.
// A zero duration is returned when the budget is disabled.
func (o *Options) EffectiveTimeout() time.Duration {
	if o == nil || o.Timeout == 0 {
		return DefaultTimeout
	}
	if o.Timeout < 0 {
		return 0
	}
	return o.Timeout
}

// Log returns the configured logger, or a noop logger when none is set.
func (o *Options) Log() logger.Logger {
	if o == nil || o.Logger == nil {
		return logger.NewNoopLogger()
	}
	return o.Logger
}

// Process is a handle to a spawned process. Implementations are safe for
// the usual wait-from-one-goroutine usage; they are not meant to be driven
// by several goroutines at once.
type Process interface {
	// Wait blocks until the process exits and returns its exit status.
	// A nonzero status is not an error. A blown time budget kills the
	// process and returns a *TimeoutError; context cancellation kills the
	// process and returns the context's error.
	Wait(ctx context.Context) (int, error)

	// Communicate writes stdin to the process (followed by EOF), waits for
	// it to exit under the same rules as Wait, and returns whatever was
	// captured from the output streams. Streams redirected via Options are
	// returned as nil.
	Communicate(ctx context.Context, stdin []byte) (stdout, stderr []byte, err error)

	// Poll reports the exit status without blocking. done is false while
	// the process is still running.
	Poll() (status int, done bool)

	// Kill terminates the process immediately.
	Kill() error

	// Pid returns the operating-system pid, or -1 when the backend cannot
	// report one.
	Pid() int
}

// Backend spawns processes somewhere: locally, or on a remote host. A
// failure to launch — including, for remote backends, a failure to connect —
// is reported from Spawn itself so callers handle both backends alike.
type Backend interface {
	Spawn(ctx context.Context, argv []string, opts *Options) (Process, error)
}
