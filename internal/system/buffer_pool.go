package system

import (
	"bytes"
	"sync"
)

// BufferPool reuses encode buffers across render tasks to keep GC pressure
// low when thousands of PNGs are written.
type BufferPool struct {
	pool sync.Pool
	max  int
}

var globalPool = NewBufferPool(4 << 20)

// NewBufferPool returns a pool that drops buffers grown beyond maxCap bytes.
func NewBufferPool(maxCap int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
		max: maxCap,
	}
}

// GetBuffer returns an empty buffer from the shared pool.
func GetBuffer() *bytes.Buffer {
	return globalPool.Get()
}

// PutBuffer returns a buffer to the shared pool.
func PutBuffer(buf *bytes.Buffer) {
	globalPool.Put(buf)
}

func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > p.max {
		return
	}
	p.pool.Put(buf)
}
