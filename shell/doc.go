// Package shell provides a uniform "spawn and communicate" interface over
// process-execution backends, so callers can run a command and collect its
// output the same way whether the process runs on the local machine or on a
// remote host over SSH.
//
// A Backend spawns processes; a Process is waited on, polled, killed, or
// driven through Communicate. The convenience functions Call, CheckCall and
// Output work against any Backend:
//
//	backend := local.NewBackend()
//	out, err := shell.Output(ctx, backend, []string{"uname", "-r"}, nil)
//
// Swapping in a remote backend changes nothing else:
//
//	backend := ssh.NewClient("10.0.0.5", ssh.WithUser("root"))
//	out, err := shell.Output(ctx, backend, []string{"uname", "-r"}, nil)
//
// Both backends surface the same error kinds: a nonzero exit becomes an
// *ExitError, a blown time budget becomes a *TimeoutError, and failures to
// launch (or, remotely, to connect) are returned from Spawn.
package shell
