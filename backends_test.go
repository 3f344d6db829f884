package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Collects everything written. Offers no other capability.
type testWriter struct {
	b bytes.Buffer
}

func (me *testWriter) Write(p []byte) (int, error) {
	return me.b.Write(p)
}

func (me *testWriter) String() string {
	return me.b.String()
}

// Serves a fixed string, as much per call as asked for.
type testReader struct {
	s   string
	pos int
}

func (me *testReader) Read(p []byte) (int, error) {
	if me.pos >= len(me.s) {
		return 0, io.EOF
	}
	n := copy(p, me.s[me.pos:])
	me.pos += n
	return n, nil
}

// Writes half of what it's given once, then fails.
type halfFaultyWriter struct {
	times int
}

func (me *halfFaultyWriter) Write(p []byte) (int, error) {
	if me.times > 0 {
		return 0, errors.New("induced write failure")
	}
	me.times++
	return (len(p) + 1) / 2, nil
}

// Fails the next `failures` writes, then collects.
type flakyWriter struct {
	failures int
	b        bytes.Buffer
}

func (me *flakyWriter) Write(p []byte) (int, error) {
	if me.failures > 0 {
		me.failures--
		return 0, errors.New("induced write failure")
	}
	return me.b.Write(p)
}

func (me *flakyWriter) String() string {
	return me.b.String()
}

// Returns half a buffer of '@' once, then fails.
type halfFaultyReader struct {
	times int
}

func (me *halfFaultyReader) Read(p []byte) (int, error) {
	if me.times > 0 {
		return 0, errors.New("induced read failure")
	}
	me.times++
	n := (len(p) + 1) / 2
	for i := range n {
		p[i] = '@'
	}
	return n, nil
}

// A seekable sink that logs every backend call, for append-mode assertions.
type recordingFile struct {
	ops []string
	b   bytes.Buffer
}

func (me *recordingFile) Write(p []byte) (int, error) {
	me.ops = append(me.ops, fmt.Sprintf("write %d", len(p)))
	return me.b.Write(p)
}

func (me *recordingFile) Seek(offset int64, whence int) (int64, error) {
	me.ops = append(me.ops, fmt.Sprintf("seek %d %d", offset, whence))
	return int64(me.b.Len()), nil
}

// Truncates but cannot seek, and remembers whether Truncate ran.
type resizeRecorder struct {
	resized bool
}

func (me *resizeRecorder) Truncate(int64) error {
	me.resized = true
	return nil
}

func TestBackendCapabilityProbing(t *testing.T) {
	// A pure writer must not acquire read, seek, resize or fd capabilities.
	var w testWriter
	be, fd := adaptBackend(&w)
	assert.False(t, fd.Ok)
	assert.True(t, be.writable())
	assert.False(t, be.readable())
	assert.False(t, be.seekable())

	_, err := be.read(make([]byte, 1))
	assert.ErrorIs(t, err, syscall.EBADF)
	_, err = be.seek(0, io.SeekStart)
	assert.ErrorIs(t, err, syscall.EBADF)
	err = be.resize(0)
	assert.ErrorIs(t, err, syscall.EBADF)
	// Missing close is a successful no-op.
	require.NoError(t, be.close())

	n, err := be.write([]byte("derp"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "derp", w.String())
}

func TestBackendReadOnly(t *testing.T) {
	be, _ := adaptBackend(&testReader{s: "x"})
	assert.True(t, be.readable())
	assert.False(t, be.writable())
	_, err := be.write([]byte("x"))
	assert.ErrorIs(t, err, syscall.EBADF)
}
