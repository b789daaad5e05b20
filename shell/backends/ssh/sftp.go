package ssh

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"
)

// Put copies a local file or directory tree to the remote host. When
// remotePath is an existing remote directory, the source keeps its base
// name underneath it.
func (c *Client) Put(ctx context.Context, localPath, remotePath string) error {
	return c.withSFTP(func(client *sftp.Client) error {
		info, err := os.Stat(localPath)
		if err != nil {
			return err
		}
		if remote, statErr := client.Stat(remotePath); statErr == nil && remote.IsDir() {
			remotePath = path.Join(remotePath, filepath.Base(localPath))
		}
		if !info.IsDir() {
			return c.putFile(ctx, client, localPath, remotePath, info.Mode())
		}

		return filepath.Walk(localPath, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(localPath, p)
			if err != nil {
				return err
			}
			target := path.Join(remotePath, filepath.ToSlash(rel))
			if fi.IsDir() {
				return client.MkdirAll(target)
			}
			return c.putFile(ctx, client, p, target, fi.Mode())
		})
	})
}

// Get copies a remote file or directory tree to the local machine. When
// localPath is an existing local directory, the source keeps its base name
// underneath it.
func (c *Client) Get(ctx context.Context, remotePath, localPath string) error {
	return c.withSFTP(func(client *sftp.Client) error {
		info, err := client.Stat(remotePath)
		if err != nil {
			return err
		}
		if local, statErr := os.Stat(localPath); statErr == nil && local.IsDir() {
			localPath = filepath.Join(localPath, path.Base(remotePath))
		}
		if !info.IsDir() {
			return c.getFile(ctx, client, remotePath, localPath, info.Mode())
		}

		walker := client.Walk(remotePath)
		for walker.Step() {
			if err := walker.Err(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel := strings.TrimPrefix(walker.Path(), remotePath)
			rel = strings.TrimPrefix(rel, "/")
			target := filepath.Join(localPath, filepath.FromSlash(rel))
			if walker.Stat().IsDir() {
				if err := os.MkdirAll(target, 0755); err != nil {
					return err
				}
				continue
			}
			if err := c.getFile(ctx, client, walker.Path(), target, walker.Stat().Mode()); err != nil {
				return err
			}
		}
		return nil
	})
}

// withSFTP runs fn over an SFTP client on a cached connection.
func (c *Client) withSFTP(fn func(client *sftp.Client) error) error {
	conn, err := c.cache.acquire(c.cacheKey(), func() (*gossh.Client, error) {
		return c.dial(c.log)
	})
	if err != nil {
		return &ConnectError{User: c.user, Host: c.host, Reason: err}
	}

	client, err := sftp.NewClient(conn.client)
	if err != nil {
		// The transport died under us: return the reference and evict so
		// the next acquire dials fresh.
		c.cache.release(conn)
		c.cache.drop(conn)
		return &ConnectError{User: c.user, Host: c.host, Reason: err}
	}
	defer c.cache.release(conn)
	defer client.Close()

	return fn(client)
}

func (c *Client) putFile(ctx context.Context, client *sftp.Client, localPath, remotePath string, mode os.FileMode) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return err
	}
	if err := copyCtx(ctx, dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	if err := client.Chmod(remotePath, mode.Perm()); err != nil {
		return err
	}
	c.log.Debugf("put %s -> %s complete", localPath, remotePath)
	return nil
}

func (c *Client) getFile(ctx context.Context, client *sftp.Client, remotePath, localPath string, mode os.FileMode) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if err := copyCtx(ctx, dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	c.log.Debugf("get %s -> %s complete", remotePath, localPath)
	return nil
}

// copyCtx copies src to dst, checking for cancellation between chunks so a
// large transfer can be abandoned mid-file.
func copyCtx(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
