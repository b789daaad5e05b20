package ssh

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	gossh "golang.org/x/crypto/ssh"

	"github.com/FrenchMajesty/remote-shell/shell"
	"github.com/FrenchMajesty/remote-shell/utils/logger"
)

// process is a handle to one command running in a remote session.
type process struct {
	client   *Client
	conn     *connection
	session  *gossh.Session
	cmdline  string
	timeout  time.Duration
	deadline time.Time
	log      logger.Logger

	stdin  io.WriteCloser
	stdout *pipe
	stderr *pipe

	done    chan struct{}
	status  int
	waitErr error

	dieOnce sync.Once
}

var _ shell.Process = (*process)(nil)

// reap waits for the session to end, classifies the result, and returns
// the connection reference.
func (p *process) reap() {
	err := p.session.Wait()
	var exitErr *gossh.ExitError
	switch {
	case err == nil:
		p.status = 0
	case errors.As(err, &exitErr):
		p.status = exitErr.ExitStatus()
	default:
		// No exit status came back: the transport went away under us.
		// Report it the way a local launch failure would be reported.
		p.status = -1
		p.waitErr = &ConnectError{User: p.client.user, Host: p.client.host, Reason: err}
	}
	p.log.Debugf("%q returned %d", p.cmdline, p.status)
	if p.stdout != nil {
		if out := p.stdout.String(); out != "" {
			p.log.Debugf("stdout: %s", out)
		}
	}
	if p.stderr != nil {
		if out := p.stderr.String(); out != "" {
			p.log.Debugf("stderr: %s", out)
		}
	}
	p.session.Close()
	p.client.cache.release(p.conn)
	close(p.done)
}

// Pid always returns -1: SSH does not report the remote pid.
func (p *process) Pid() int { return -1 }

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
			p.log.Warnf("stdin write failed: %v", err)
		}
	}
	// EOF follows the payload, matching communicate semantics.
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
	p.session.Signal(gossh.SIGKILL)
	return p.session.Close()
}

// die tears the session down and waits for the reaper so the connection
// reference is returned before the caller moves on.
func (p *process) die() {
	p.dieOnce.Do(func() {
		p.session.Signal(gossh.SIGKILL)
		p.session.Close()
		<-p.done
	})
}

func (p *process) captured(buf *pipe) []byte {
	if buf == nil {
		return nil
	}
	return buf.next()
}
