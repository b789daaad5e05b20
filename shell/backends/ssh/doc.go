// Package ssh runs processes on a remote host over SSH while exposing the
// same Backend/Process shape as the local backend, so code can be written
// once and pointed at either:
//
//	var backend shell.Backend
//	if remote {
//	    backend = ssh.NewClient(host, ssh.WithUser("root"), ssh.WithKeyFile(key))
//	} else {
//	    backend = local.NewBackend()
//	}
//	out, err := shell.Output(ctx, backend, []string{"df", "-h"}, nil)
//
// Connections are cached and multiplexed: clients with the same
// user@host(tag) triple share one underlying SSH connection, refcounted so
// it is reclaimed once nothing is running over it. Session opening is
// retried under the configured connect timeout and attempt budget.
//
// Connection and transport failures surface as *ConnectError from the same
// places the local backend reports launch failures, preserving backend
// parity for callers.
package ssh
