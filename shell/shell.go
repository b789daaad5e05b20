package shell

import (
	"context"
	"errors"
)

// Call spawns argv on the backend and waits for it, returning the exit
// status.
func Call(ctx context.Context, b Backend, argv []string, opts *Options) (int, error) {
	p, err := b.Spawn(ctx, argv, opts)
	if err != nil {
		return -1, err
	}
	return p.Wait(ctx)
}

// CheckCall spawns argv on the backend, waits for it, and returns an
// *ExitError when the process exits nonzero.
func CheckCall(ctx context.Context, b Backend, argv []string, opts *Options) error {
	p, err := b.Spawn(ctx, argv, opts)
	if err != nil {
		return err
	}
	status, err := p.Wait(ctx)
	if err != nil {
		return err
	}
	if status != 0 {
		return &ExitError{Cmd: Cmdline(argv), Code: status, Pid: p.Pid()}
	}
	return nil
}

// Output spawns argv on the backend with stdout captured and returns the
// captured bytes. A nonzero exit returns an *ExitError carrying the output.
// Options.Stdout must be left unset.
func Output(ctx context.Context, b Backend, argv []string, opts *Options) ([]byte, error) {
	var o Options
	if opts != nil {
		if opts.Stdout != nil {
			return nil, errors.New("shell: Stdout is not allowed with Output, it will be overridden")
		}
		o = *opts
	}

	p, err := b.Spawn(ctx, argv, &o)
	if err != nil {
		return nil, err
	}
	stdout, _, err := p.Communicate(ctx, nil)
	if err != nil {
		return stdout, err
	}
	if status, done := p.Poll(); done && status != 0 {
		return stdout, &ExitError{Cmd: Cmdline(argv), Code: status, Pid: p.Pid(), Output: stdout}
	}
	return stdout, nil
}
