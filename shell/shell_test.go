package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a scripted Process for exercising the conveniences.
type fakeProcess struct {
	status  int
	stdout  []byte
	stderr  []byte
	waitErr error
	stdin   []byte
}

func (p *fakeProcess) Wait(ctx context.Context) (int, error) {
	return p.status, p.waitErr
}

func (p *fakeProcess) Communicate(ctx context.Context, stdin []byte) ([]byte, []byte, error) {
	p.stdin = stdin
	return p.stdout, p.stderr, p.waitErr
}

func (p *fakeProcess) Poll() (int, bool) { return p.status, true }
func (p *fakeProcess) Kill() error       { return nil }
func (p *fakeProcess) Pid() int          { return 4242 }

type fakeBackend struct {
	proc     *fakeProcess
	spawnErr error
	argv     []string
	opts     *Options
}

func (b *fakeBackend) Spawn(ctx context.Context, argv []string, opts *Options) (Process, error) {
	b.argv = argv
	b.opts = opts
	if b.spawnErr != nil {
		return nil, b.spawnErr
	}
	return b.proc, nil
}

func TestCall_ReturnsExitStatus(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{status: 3}}

	status, err := Call(context.Background(), b, []string{"false"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, status)
}

func TestCall_SpawnFailure(t *testing.T) {
	spawnErr := errors.New("no such file")
	b := &fakeBackend{spawnErr: spawnErr}

	status, err := Call(context.Background(), b, []string{"nope"}, nil)

	assert.Equal(t, -1, status)
	assert.ErrorIs(t, err, spawnErr)
}

func TestCheckCall_NonzeroExit(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{status: 2}}

	err := CheckCall(context.Background(), b, []string{"ls", "/missing"}, nil)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, "ls /missing", exitErr.Cmd)
	assert.Equal(t, 4242, exitErr.Pid)
}

func TestCheckCall_ZeroExit(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{status: 0}}
	assert.NoError(t, CheckCall(context.Background(), b, []string{"true"}, nil))
}

func TestOutput_CapturesStdout(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{status: 0, stdout: []byte("4.19.0\n")}}

	out, err := Output(context.Background(), b, []string{"uname", "-r"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, []byte("4.19.0\n"), out)
}

func TestOutput_NonzeroExitCarriesOutput(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{status: 1, stdout: []byte("partial")}}

	out, err := Output(context.Background(), b, []string{"broken"}, nil)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, []byte("partial"), out)
	assert.Equal(t, []byte("partial"), exitErr.Output)
}

func TestOutput_RejectsStdoutOverride(t *testing.T) {
	b := &fakeBackend{proc: &fakeProcess{}}

	_, err := Output(context.Background(), b, []string{"true"}, &Options{Stdout: &failWriter{}})

	assert.Error(t, err)
	assert.Nil(t, b.argv)
}

type failWriter struct{}

func (*failWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestOptions_EffectiveTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, (*Options)(nil).EffectiveTimeout())
	assert.Equal(t, DefaultTimeout, (&Options{}).EffectiveTimeout())
	assert.Equal(t, time.Minute, (&Options{Timeout: time.Minute}).EffectiveTimeout())
	assert.Equal(t, time.Duration(0), (&Options{Timeout: -1}).EffectiveTimeout())
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Cmd: "ls /missing", Code: 2, Output: []byte("no such directory\n")}
	assert.Equal(t, `command "ls /missing" returned non-zero exit status 2: no such directory`, err.Error())

	bare := &ExitError{Cmd: "false", Code: 1}
	assert.Equal(t, `command "false" returned non-zero exit status 1`, bare.Error())
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{Cmd: "sleep 100", Timeout: 2 * time.Second}
	assert.Equal(t, `command "sleep 100" timed out after 2s`, err.Error())
}
