package ssh

import "sync"

// pipe accumulates captured remote output. The session's copier goroutine
// writes while Communicate or a timed-out Wait reads.
type pipe struct {
	mu   sync.Mutex
	data []byte
	rpos int
}

func (p *pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append(p.data, b...)
	return len(b), nil
}

// next returns everything written since the previous call to next.
func (p *pipe) next() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.data)-p.rpos)
	copy(out, p.data[p.rpos:])
	p.rpos = len(p.data)
	return out
}

// bytes returns everything ever written, regardless of read position.
func (p *pipe) bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out
}

func (p *pipe) String() string {
	return string(p.bytes())
}
