package fileio

import (
	"io"
	"syscall"

	g "github.com/anacrolix/generics"
)

// Resizer is the capability to truncate or extend the underlying stream.
// *os.File satisfies it.
type Resizer interface {
	Truncate(size int64) error
}

// Fder exposes an underlying OS descriptor. *os.File satisfies it.
type Fder interface {
	Fd() uintptr
}

// backend wraps a user-supplied stream object behind a fixed capability set.
// Each capability is probed once, at construction. Calls against a missing
// capability fail without touching the wrapped object: read, write, seek and
// resize report EBADF, close is a no-op, and the descriptor is none.
type backend struct {
	r io.Reader
	w io.Writer
	s io.Seeker
	c io.Closer
	t Resizer
}

func adaptBackend(v any) (be backend, fd g.Option[int]) {
	be.r, _ = v.(io.Reader)
	be.w, _ = v.(io.Writer)
	be.s, _ = v.(io.Seeker)
	be.c, _ = v.(io.Closer)
	be.t, _ = v.(Resizer)
	if f, ok := v.(Fder); ok {
		fd.Set(int(f.Fd()))
	}
	return
}

func (me *backend) readable() bool { return me.r != nil }
func (me *backend) writable() bool { return me.w != nil }
func (me *backend) seekable() bool { return me.s != nil }

func (me *backend) read(p []byte) (int, error) {
	if me.r == nil {
		return 0, syscall.EBADF
	}
	return me.r.Read(p)
}

func (me *backend) write(p []byte) (int, error) {
	if me.w == nil {
		return 0, syscall.EBADF
	}
	return me.w.Write(p)
}

func (me *backend) seek(offset int64, whence int) (int64, error) {
	if me.s == nil {
		return 0, syscall.EBADF
	}
	return me.s.Seek(offset, whence)
}

func (me *backend) resize(size int64) error {
	if me.t == nil {
		return syscall.EBADF
	}
	return me.t.Truncate(size)
}

func (me *backend) close() error {
	if me.c == nil {
		return nil
	}
	return me.c.Close()
}
