package objectstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// BufferPoolConfig bounds what a BufferPool keeps around.
type BufferPoolConfig struct {
	// MaxBufferSize is the largest buffer capacity returned to the pool.
	MaxBufferSize int
	// InitialBufferSize is the capacity of freshly allocated buffers.
	InitialBufferSize int
}

// DefaultBufferPoolConfig keeps buffers up to 64 MiB, enough for one upload part.
func DefaultBufferPoolConfig() BufferPoolConfig {
	return BufferPoolConfig{
		MaxBufferSize:     64 << 20,
		InitialBufferSize: 64 << 10,
	}
}

// BufferPool recycles bytes.Buffers used to stage part and chunk payloads.
type BufferPool struct {
	pool   sync.Pool
	config BufferPoolConfig

	created   atomic.Int64
	discarded atomic.Int64
}

// NewBufferPool returns a pool with DefaultBufferPoolConfig.
func NewBufferPool() *BufferPool {
	return NewBufferPoolWithConfig(DefaultBufferPoolConfig())
}

func NewBufferPoolWithConfig(config BufferPoolConfig) *BufferPool {
	bp := &BufferPool{config: config}
	bp.pool = sync.Pool{
		New: func() interface{} {
			bp.created.Add(1)
			return bytes.NewBuffer(make([]byte, 0, bp.config.InitialBufferSize))
		},
	}
	return bp
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns b to the pool. Oversized buffers are dropped.
func (bp *BufferPool) Put(b *bytes.Buffer) {
	if b == nil {
		return
	}
	if b.Cap() > bp.config.MaxBufferSize {
		bp.discarded.Add(1)
		return
	}
	b.Reset()
	bp.pool.Put(b)
}

// Stats reports how many buffers were allocated and how many were dropped as oversized.
func (bp *BufferPool) Stats() (created, discarded int64) {
	return bp.created.Load(), bp.discarded.Load()
}

// Stage reads size bytes from r, or all of r when size is negative, into a pooled
// buffer. The caller must Put the buffer back once the payload has been sent.
func (bp *BufferPool) Stage(r io.Reader, size int64) (*bytes.Buffer, error) {
	buf := bp.Get()
	var err error
	if size < 0 {
		_, err = buf.ReadFrom(r)
	} else {
		buf.Grow(int(size))
		var n int64
		n, err = io.CopyN(buf, r, size)
		if err == io.EOF {
			err = fmt.Errorf("%w: payload ended after %d of %d bytes", ErrInvalidArgument, n, size)
		}
	}
	if err != nil {
		bp.Put(buf)
		return nil, err
	}
	return buf, nil
}
