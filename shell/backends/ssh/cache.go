package ssh

import (
	"sync"

	gossh "golang.org/x/crypto/ssh"
)

// connection is a refcounted cache entry for one underlying SSH connection.
type connection struct {
	key    string
	client *gossh.Client
	refs   int
}

// connCache maps user@host(tag) keys to live connections so sessions with
// the same target multiplex over one transport.
type connCache struct {
	mu    sync.Mutex
	conns map[string]*connection
}

func newConnCache() *connCache {
	return &connCache{conns: make(map[string]*connection)}
}

// sharedCache is the process-wide cache used by every Client unless a test
// swaps in its own.
var sharedCache = newConnCache()

// acquire returns the cached connection for key, dialing a fresh one when
// none exists. The caller owns one reference and must release it.
func (c *connCache) acquire(key string, dial func() (*gossh.Client, error)) (*connection, error) {
	c.mu.Lock()
	if conn, ok := c.conns[key]; ok {
		conn.refs++
		c.mu.Unlock()
		return conn, nil
	}
	c.mu.Unlock()

	client, err := dial()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.conns[key]; ok {
		// Two callers dialed the same target at roughly the same time;
		// prefer the one already in the cache.
		client.Close()
		existing.refs++
		return existing, nil
	}
	conn := &connection{key: key, client: client, refs: 1}
	c.conns[key] = conn
	return conn, nil
}

// release drops one reference.
func (c *connCache) release(conn *connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn.refs > 0 {
		conn.refs--
	}
}

// drop evicts the connection if nothing references it anymore. Used after
// transport failures so the next acquire dials fresh.
func (c *connCache) drop(conn *connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.conns[conn.key]
	if !ok || cached != conn {
		return
	}
	if cached.refs == 0 {
		cached.client.Close()
		delete(c.conns, conn.key)
	}
}

// clear closes every cached connection without checking references.
func (c *connCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range c.conns {
		conn.client.Close()
	}
	c.conns = make(map[string]*connection)
}

// CloseAllConnections tears down the shared connection cache. Intended for
// process shutdown.
func CloseAllConnections() {
	sharedCache.clear()
}
