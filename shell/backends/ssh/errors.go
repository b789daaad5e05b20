package ssh

import "fmt"

// ConnectError reports a failure to reach or keep a connection to the
// remote host. It is returned wherever the local backend would report a
// process-launch failure, so callers handle both backends alike.
type ConnectError struct {
	User   string
	Host   string
	Reason error
}

func (e *ConnectError) Error() string {
	msg := fmt.Sprintf("could not connect to %s@%s", e.User, e.Host)
	if e.Reason != nil {
		msg += fmt.Sprintf(" because %v", e.Reason)
	}
	return msg
}

func (e *ConnectError) Unwrap() error { return e.Reason }
