package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	gossh "golang.org/x/crypto/ssh"

	"github.com/FrenchMajesty/remote-shell/shell"
	"github.com/FrenchMajesty/remote-shell/utils/logger"
	"github.com/FrenchMajesty/remote-shell/utils/retry"
)

// DefaultConnectTimeout bounds how long session opening may take, retries
// included.
const DefaultConnectTimeout = 3 * time.Minute

var (
	globalTagMu sync.Mutex
	globalTag   string
)

// SetGlobalConnectionTag forces every subsequently created Client onto the
// given connection tag, so all of them multiplex over shared connections
// without each call site passing a tag.
func SetGlobalConnectionTag(tag string) {
	globalTagMu.Lock()
	defer globalTagMu.Unlock()
	globalTag = tag
}

func currentGlobalTag() string {
	globalTagMu.Lock()
	defer globalTagMu.Unlock()
	return globalTag
}

// Client is a process-execution backend targeting one remote host.
type Client struct {
	host               string
	port               int
	user               string
	password           string
	keyFile            string
	connectTimeout     time.Duration
	maxConnectAttempts int
	tag                string
	sourceProfile      bool
	log                logger.Logger
	cache              *connCache
}

var _ shell.Backend = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithUser sets the login user. Defaults to the current OS user.
func WithUser(name string) Option {
	return func(c *Client) { c.user = name }
}

// WithPassword enables password authentication.
func WithPassword(password string) Option {
	return func(c *Client) { c.password = password }
}

// WithKeyFile enables public-key authentication with the given private key.
func WithKeyFile(path string) Option {
	return func(c *Client) { c.keyFile = path }
}

// WithPort sets the SSH port. Defaults to 22.
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithConnectTimeout bounds connection and session establishment.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) { c.connectTimeout = d }
}

// WithMaxConnectAttempts caps how many times session opening is retried
// within the connect timeout. Defaults to unlimited.
func WithMaxConnectAttempts(n int) Option {
	return func(c *Client) { c.maxConnectAttempts = n }
}

// WithConnectionTag sets the multiplexing tag. Clients sharing a tag share
// connections; by default each Client gets its own random tag.
func WithConnectionTag(tag string) Option {
	return func(c *Client) { c.tag = tag }
}

// WithSourceProfile controls whether commands run as root are wrapped with
// "source /etc/profile" first. Non-interactive SSH sessions do not source
// it on their own. On by default.
func WithSourceProfile(enabled bool) Option {
	return func(c *Client) { c.sourceProfile = enabled }
}

// WithLogger routes connection and command logging somewhere. Off by
// default.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a backend for the given host.
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:               host,
		port:               22,
		connectTimeout:     DefaultConnectTimeout,
		maxConnectAttempts: -1,
		sourceProfile:      true,
		log:                logger.NewNoopLogger(),
		cache:              sharedCache,
	}
	if u, err := user.Current(); err == nil {
		c.user = u.Username
	}
	if tag := currentGlobalTag(); tag != "" {
		c.tag = tag
	} else {
		c.tag = uuid.NewString()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// connectionName is the user@host label used in logs and errors.
func (c *Client) connectionName() string {
	return fmt.Sprintf("%s@%s", c.user, c.host)
}

func (c *Client) cacheKey() string {
	return fmt.Sprintf("%s@%s(%s)", c.user, c.host, c.tag)
}

// Spawn starts argv on the remote host. Connection failures are reported
// here as *ConnectError, the remote equivalent of a launch failure.
func (c *Client) Spawn(ctx context.Context, argv []string, opts *shell.Options) (shell.Process, error) {
	if opts == nil {
		opts = &shell.Options{}
	}
	cmdline, err := buildCmdline(argv, opts.Env)
	if err != nil {
		return nil, err
	}
	if c.sourceProfile && c.user == "root" {
		cmdline = "source /etc/profile;" + cmdline
	}

	log := c.log
	if opts.Logger != nil {
		log = opts.Logger
	}
	log = logger.NewPrefixLogger(c.connectionName(), log)

	conn, session, err := c.openSession(ctx, log)
	if err != nil {
		return nil, err
	}

	p := &process{
		client:  c,
		conn:    conn,
		session: session,
		cmdline: cmdline,
		timeout: opts.EffectiveTimeout(),
		log:     log,
		done:    make(chan struct{}),
	}

	if opts.Stdout != nil {
		session.Stdout = opts.Stdout
	} else {
		p.stdout = &pipe{}
		session.Stdout = p.stdout
	}
	switch {
	case opts.CombineStderr:
		session.Stderr = session.Stdout
	case opts.Stderr != nil:
		session.Stderr = opts.Stderr
	default:
		p.stderr = &pipe{}
		session.Stderr = p.stderr
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		c.cache.release(conn)
		return nil, err
	}
	p.stdin = stdin

	log.Debugf("executing %q", cmdline)
	if err := session.Start(cmdline); err != nil {
		session.Close()
		c.cache.release(conn)
		return nil, &ConnectError{User: c.user, Host: c.host, Reason: err}
	}
	if p.timeout > 0 {
		p.deadline = time.Now().Add(p.timeout)
	}

	go p.reap()

	return p, nil
}

// openSession acquires a cached connection and opens a session over it,
// retrying under the connect timeout and attempt budget. Failed
// connections are evicted so the next attempt dials fresh.
func (c *Client) openSession(ctx context.Context, log logger.Logger) (*connection, *gossh.Session, error) {
	var lastErr error
	loop := retry.NewLoop(retry.Options{
		Attempts:  c.maxConnectAttempts,
		Timeout:   c.connectTimeout,
		SleepTime: time.Second,
	})
	for loop.Next(ctx) {
		conn, err := c.cache.acquire(c.cacheKey(), func() (*gossh.Client, error) {
			return c.dial(log)
		})
		if err != nil {
			lastErr = err
			log.Warnf("connection failed: %v", err)
			continue
		}
		session, err := conn.client.NewSession()
		if err == nil {
			return conn, session, nil
		}
		lastErr = err
		log.Warnf("failed to open session: %v", err)
		c.cache.release(conn)
		c.cache.drop(conn)
	}
	if lastErr == nil {
		lastErr = loop.Err()
	}
	return nil, nil, &ConnectError{User: c.user, Host: c.host, Reason: lastErr}
}

func (c *Client) dial(log logger.Logger) (*gossh.Client, error) {
	cfg := &gossh.ClientConfig{
		User:            c.user,
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         c.connectTimeout,
	}
	if c.keyFile != "" {
		key, err := os.ReadFile(c.keyFile)
		if err != nil {
			return nil, err
		}
		signer, err := gossh.ParsePrivateKey(key)
		if err != nil {
			return nil, err
		}
		cfg.Auth = append(cfg.Auth, gossh.PublicKeys(signer))
	}
	if c.password != "" {
		cfg.Auth = append(cfg.Auth, gossh.Password(c.password))
	}

	log.Debugf("connecting")
	client, err := gossh.Dial("tcp", net.JoinHostPort(c.host, strconv.Itoa(c.port)), cfg)
	if err != nil {
		return nil, err
	}
	log.Debugf("connected")
	return client, nil
}
