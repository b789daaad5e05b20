package shell

import (
	"fmt"
	"strings"
	"time"
)

// ExitError reports a process that exited with a nonzero status.
type ExitError struct {
	Cmd    string
	Code   int
	Pid    int
	Output []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q returned non-zero exit status %d", e.Cmd, e.Code)
	if len(e.Output) > 0 {
		msg += ": " + strings.TrimSpace(string(e.Output))
	}
	return msg
}

// TimeoutError reports a process that was killed because its time budget
// ran out. Output holds whatever had been captured before the kill.
type TimeoutError struct {
	Cmd     string
	Timeout time.Duration
	Pid     int
	Output  []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %v", e.Cmd, e.Timeout)
}

// Cmdline renders an argv the way it is shown in errors and logs.
func Cmdline(argv []string) string {
	return strings.Join(argv, " ")
}
