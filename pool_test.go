package fileio

import (
	"testing"

	g "github.com/anacrolix/generics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPoolRoundTrip(t *testing.T) {
	p := NewBufferPool()

	b := p.Get(64)
	assert.Equal(t, 64, len(b))
	p.Put(b)

	b = p.Get(64)
	assert.Equal(t, 64, len(b))

	// Unknown lengths are simply dropped.
	p.Put(make([]byte, 3))
}

func TestLimitedBufferSource(t *testing.T) {
	src := NewLimitedBufferSource(NewBufferPool(), 128)

	a := src.Get(64)
	b := src.Get(64)
	src.Put(a)
	c := src.Get(64)
	src.Put(b)
	src.Put(c)
}

func TestHandleReturnsBufferOnClose(t *testing.T) {
	// The handle draws its buffer from the source it was given and returns
	// it on close. A limit of exactly one buffer proves the return happens:
	// a second handle would otherwise block forever.
	src := NewLimitedBufferSource(NewBufferPool(), 16)
	for range 3 {
		var w testWriter
		fh := NewOpts(HandleOpts{
			Backend:    &w,
			Flags:      ForWrite | FullyBuffered,
			BufferSize: g.Some(16),
			Buffers:    src,
		})
		_, err := fh.WriteString("x")
		require.NoError(t, err)
		require.NoError(t, fh.Close())
		assert.Equal(t, "x", w.String())
	}
}
