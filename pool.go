package fileio

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BufferSource hands out and takes back buffer storage for handles. It is
// the memory source for everything a Handle allocates after construction.
type BufferSource interface {
	// Get returns a slice with at least size capacity.
	Get(size int) []byte
	Put(b []byte)
}

// DefaultBufferSource backs handles that weren't given their own source.
var DefaultBufferSource BufferSource = NewBufferPool()

type pool struct {
	mu      sync.RWMutex
	buffers map[int]*sync.Pool
}

// NewBufferPool returns a BufferSource that recycles buffers through
// per-length free lists.
func NewBufferPool() BufferSource {
	return &pool{
		buffers: map[int]*sync.Pool{},
	}
}

func (p *pool) Get(size int) []byte {
	p.mu.RLock()
	sp, ok := p.buffers[size]
	p.mu.RUnlock()
	if !ok {
		sp = &sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		}
		p.mu.Lock()
		p.buffers[size] = sp
		p.mu.Unlock()
	}
	return sp.Get().([]byte)
}

func (p *pool) Put(b []byte) {
	p.mu.RLock()
	sp, ok := p.buffers[cap(b)]
	p.mu.RUnlock()
	if !ok {
		return
	}
	sp.Put(b[:cap(b)])
}

type limitedSource struct {
	buffers BufferSource
	semMax  *semaphore.Weighted
}

// NewLimitedBufferSource bounds the total bytes outstanding from src. Get
// blocks until enough previously handed-out storage comes back.
func NewLimitedBufferSource(src BufferSource, limit int64) BufferSource {
	return &limitedSource{
		buffers: src,
		semMax:  semaphore.NewWeighted(limit),
	}
}

func (p *limitedSource) Get(size int) []byte {
	if err := p.semMax.Acquire(context.Background(), int64(size)); err != nil {
		panic(err)
	}
	return p.buffers.Get(size)
}

func (p *limitedSource) Put(b []byte) {
	p.buffers.Put(b)
	p.semMax.Release(int64(cap(b)))
}
