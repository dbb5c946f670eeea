package transfer

import "sync"

// BufferPool provides reusable chunk buffers so hosts running many
// copies avoid re-allocating a buffer per operation.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a pool of buffers of the given size. A size
// below 1 falls back to DefaultBufferSize.
func NewBufferPool(size int) *BufferPool {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
		size: size,
	}
}

// BufferSize returns the size of the buffers this pool hands out.
func (p *BufferPool) BufferSize() int { return p.size }

// Get returns a buffer from the pool.
func (p *BufferPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool. Buffers of the wrong size are
// discarded.
func (p *BufferPool) Put(buf *[]byte) {
	if len(*buf) == p.size {
		p.pool.Put(buf)
	}
}
