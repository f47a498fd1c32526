// Package pools holds reusable buffers for rendering chart pages and JSON
// documents on hot request paths.
package pools

import (
	"bytes"
	"sync"
)

const (
	// Pre-allocate for a typical sunburst page
	defaultBufferSize = 64 << 10
	// Buffers that grew past this are dropped instead of pooled
	maxRetainedBufferSize = 1 << 20
)

// BufferPool is a sync.Pool of bytes.Buffers with a retention cap
type BufferPool struct {
	pool        sync.Pool
	maxRetained int
}

// NewBufferPool creates a pool whose fresh buffers have size bytes of
// capacity and which drops buffers larger than maxRetained
func NewBufferPool(size, maxRetained int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
		maxRetained: maxRetained,
	}
}

// Get returns an empty buffer
func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool. The caller must not use buf afterwards.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > p.maxRetained { // Prevent memory bloat
		return
	}
	p.pool.Put(buf)
}

// Buffers is the shared pool used for rendered pages
var Buffers = NewBufferPool(defaultBufferSize, maxRetainedBufferSize)
