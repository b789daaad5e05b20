// Package local runs processes on the local machine via os/exec, enforcing
// the shared time-budget and captured-output semantics of the shell package.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/FrenchMajesty/remote-shell/shell"
	"github.com/FrenchMajesty/remote-shell/utils/logger"
)

// killGracePeriod is how long a timed-out process gets to act on the first
// signal before it is force-killed.
var killGracePeriod = 10 * time.Minute

// Backend is a local process-execution backend.
type Backend struct{}

var _ shell.Backend = (*Backend)(nil)

// NewBackend creates a new local backend
func NewBackend() *Backend {
	return &Backend{}
}

// Spawn starts argv as a local process. Launch failures (missing binary,
// permission problems) are returned here, before any Process exists.
func (b *Backend) Spawn(ctx context.Context, argv []string, opts *shell.Options) (shell.Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("local: empty argv")
	}
	if opts == nil {
		opts = &shell.Options{}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range opts.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	p := &process{
		cmdline: shell.Cmdline(argv),
		timeout: opts.EffectiveTimeout(),
		signal:  opts.Signal,
		log:     opts.Log(),
		done:    make(chan struct{}),
	}
	if p.signal == nil {
		p.signal = syscall.SIGABRT
	}

	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	} else {
		p.stdout = &lockedBuffer{}
		cmd.Stdout = p.stdout
	}
	switch {
	case opts.CombineStderr:
		cmd.Stderr = cmd.Stdout
	case opts.Stderr != nil:
		cmd.Stderr = opts.Stderr
	default:
		p.stderr = &lockedBuffer{}
		cmd.Stderr = p.stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	p.stdin = stdin

	p.log.Debugf("executing %q", p.cmdline)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p.cmd = cmd
	if p.timeout > 0 {
		p.deadline = time.Now().Add(p.timeout)
	}

	go func() {
		err := cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			p.status = 0
		case errors.As(err, &exitErr):
			p.status = exitErr.ExitCode()
		default:
			p.status = -1
			p.waitErr = err
		}
		p.log.Debugf("%q returned %d", p.cmdline, p.status)
		close(p.done)
	}()

	return p, nil
}

type process struct {
	cmd      *exec.Cmd
	cmdline  string
	timeout  time.Duration
	deadline time.Time
	signal   os.Signal
	log      logger.Logger

	stdin  io.WriteCloser
	stdout *lockedBuffer
	stderr *lockedBuffer

	done    chan struct{}
	status  int
	waitErr error

	dieOnce sync.Once
}

var _ shell.Process = (*process)(nil)

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *process) Wait(ctx context.Context) (int, error) {
	// A finished process never times out, even if the deadline also passed.
	if status, done := p.Poll(); done {
		return status, p.waitErr
	}

	var expired <-chan time.Time
	if !p.deadline.IsZero() {
		timer := time.NewTimer(time.Until(p.deadline))
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-p.done:
		return p.status, p.waitErr
	case <-expired:
		p.die()
		return -1, &shell.TimeoutError{
			Cmd:     p.cmdline,
			Timeout: p.timeout,
			Pid:     p.Pid(),
			Output:  p.captured(p.stdout),
		}
	case <-ctx.Done():
		p.die()
		return -1, ctx.Err()
	}
}

func (p *process) Communicate(ctx context.Context, stdin []byte) ([]byte, []byte, error) {
	if len(stdin) > 0 {
		if _, err := p.stdin.Write(stdin); err != nil {
			p.log.Warnf("stdin write to %q failed: %v", p.cmdline, err)
		}
	}
	p.stdin.Close()

	if _, err := p.Wait(ctx); err != nil {
		return p.captured(p.stdout), p.captured(p.stderr), err
	}
	return p.captured(p.stdout), p.captured(p.stderr), nil
}

func (p *process) Poll() (int, bool) {
	select {
	case <-p.done:
		return p.status, true
	default:
		return 0, false
	}
}

func (p *process) Kill() error {
	return p.cmd.Process.Kill()
}

// die delivers the configured signal and escalates to SIGKILL if the
// process has not exited within the grace period.
func (p *process) die() {
	p.dieOnce.Do(func() {
		if err := p.cmd.Process.Signal(p.signal); err != nil {
			// Already gone.
			return
		}
		select {
		case <-p.done:
		case <-time.After(killGracePeriod):
			p.cmd.Process.Kill()
			<-p.done
		}
	})
}

func (p *process) captured(buf *lockedBuffer) []byte {
	if buf == nil {
		return nil
	}
	return buf.Bytes()
}
