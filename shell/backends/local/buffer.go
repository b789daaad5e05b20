package local

import (
	"bytes"
	"sync"
)

// lockedBuffer is a mutex-guarded bytes.Buffer. Captured output is written
// by the copier goroutines inside exec.Cmd while a timed-out Wait may be
// reading it for the error payload.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}
