package fileio

import (
	"io"
	"log/slog"
	"sync"
	"syscall"

	g "github.com/anacrolix/generics"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Handle is a buffered file handle over an arbitrary backend stream. The zero
// value is closed. Handles must not be copied after first use.
type Handle struct {
	_ noCopy

	be backend
	fl OpenFlag

	// One buffer, alternately holding read-ahead or pending writes. Allocated
	// lazily on first buffered I/O, returned to bufs on close.
	buf  []byte
	blen int
	// Index of the next free (writing) or next-to-consume (reading) byte.
	p int
	// Bytes remaining to consume. Meaningful while reading.
	r int
	// Free space before a flush is forced. Meaningful while writing.
	w int
	// Deferred backend read error when a refill returned data and an error in
	// the same call.
	rdErr error

	bufs   BufferSource
	fd     g.Option[int]
	logger *slog.Logger

	encoding encoding.Encoding
	enc      *encoding.Encoder

	// Borrowed, never closed or freed here. Nil means unlocked operation.
	lk sync.Locker
}

// HandleOpts configures NewOpts. Zero fields get defaults.
type HandleOpts struct {
	// The stream object to wrap. Capabilities are probed from the interfaces
	// it implements.
	Backend any
	Flags   OpenFlag
	// Buffer length. Unset means the backend's preferred block size, or 8 KiB.
	BufferSize g.Option[int]
	// Where buffer storage comes from. Defaults to a process-wide pool.
	Buffers BufferSource
	Logger  *slog.Logger
	// Encoding for rune output. Defaults to UTF-8.
	Encoding encoding.Encoding
}

// New wraps backend in a Handle with the given flags.
func New(backend any, flags OpenFlag) *Handle {
	return NewOpts(HandleOpts{Backend: backend, Flags: flags})
}

func NewOpts(opts HandleOpts) *Handle {
	if opts.Buffers == nil {
		opts.Buffers = DefaultBufferSource
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Encoding == nil {
		opts.Encoding = unicode.UTF8
	}
	h := &Handle{
		fl:       opts.Flags & openFlagMask,
		bufs:     opts.Buffers,
		logger:   opts.Logger,
		encoding: opts.Encoding,
	}
	h.be, h.fd = adaptBackend(opts.Backend)
	if n, ok := opts.BufferSize.AsTuple(); ok && n > 0 {
		h.blen = n
	}
	return h
}

// Locking attaches a borrowed lock target serializing all public operations,
// or detaches it when l is nil. Attach before sharing the handle; the call
// itself is not synchronized.
func (me *Handle) Locking(l sync.Locker) {
	me.lk = l
}

func (me *Handle) lock() {
	if l := me.lk; l != nil {
		l.Lock()
	}
}

func (me *Handle) unlock() {
	if l := me.lk; l != nil {
		l.Unlock()
	}
}

// Readable reports whether the handle is open for reading.
func (me *Handle) Readable() bool {
	me.lock()
	defer me.unlock()
	return me.fl&ForRead != 0
}

// Writable reports whether the handle is open for writing.
func (me *Handle) Writable() bool {
	me.lock()
	defer me.unlock()
	return me.fl&ForWrite != 0
}

// Closed reports whether the handle has been closed (or never opened).
func (me *Handle) Closed() bool {
	me.lock()
	defer me.unlock()
	return me.closedNolock()
}

func (me *Handle) closedNolock() bool {
	return me.fl&(ForRead|ForWrite) == 0
}

// Fileno returns the backend's OS descriptor, if it has one.
func (me *Handle) Fileno() g.Option[int] {
	me.lock()
	defer me.unlock()
	return me.fd
}

// IsTTY reports whether the backend descriptor refers to a terminal.
func (me *Handle) IsTTY() bool {
	me.lock()
	defer me.unlock()
	fd, ok := me.fd.AsTuple()
	if !ok {
		return false
	}
	_, tty := statStream(fd)
	return tty
}

// Seek sets the backend position. Buffered state is not reconciled: seeking
// while a buffered read or write is in flight is a caller error. Flush first.
func (me *Handle) Seek(offset int64, whence int) (int64, error) {
	me.lock()
	defer me.unlock()
	return me.be.seek(offset, whence)
}

// Tell returns the current backend position.
func (me *Handle) Tell() (int64, error) {
	return me.Seek(0, io.SeekCurrent)
}

// Rewind seeks the backend back to its beginning.
func (me *Handle) Rewind() error {
	_, err := me.Seek(0, io.SeekStart)
	return err
}

// Resize truncates or extends the backend to size bytes.
func (me *Handle) Resize(size int64) error {
	me.lock()
	defer me.unlock()
	return me.be.resize(size)
}

// Truncate cuts the backend off at the current position. If the position
// can't be determined that error is returned and nothing is resized.
func (me *Handle) Truncate() error {
	me.lock()
	defer me.unlock()
	off, err := me.be.seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	return me.be.resize(off)
}

// Flush writes out any buffered write data. Idempotent when the buffer is
// clear.
func (me *Handle) Flush() error {
	me.lock()
	defer me.unlock()
	if me.fl&writing != 0 {
		return me.sflush()
	}
	return nil
}

// Close flushes pending writes, releases the buffer, and closes the backend.
// The backend is closed even if the flush fails, and the flush error wins.
// Closing a closed handle is a no-op.
func (me *Handle) Close() error {
	me.lock()
	defer me.unlock()
	return me.closeNolock()
}

func (me *Handle) closeNolock() error {
	if me.closedNolock() {
		return nil
	}
	var flushErr error
	if me.fl&writing != 0 {
		flushErr = me.sflush()
	}
	if me.buf != nil {
		me.bufs.Put(me.buf)
		me.buf = nil
	}
	me.fl &^= ForRead | ForWrite | reading | writing | reachedEOF
	// The byte fast paths check the counters before the flags. Zero them so
	// they can't index the freed buffer.
	me.p = 0
	me.r = 0
	me.w = 0
	closeErr := me.be.close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Swap exchanges the entire state of two handles, buffered data included,
// without flushing either. Neither handle's lock is taken: the caller must
// serialize against all other users of both.
func (me *Handle) Swap(other *Handle) {
	me.be, other.be = other.be, me.be
	me.fl, other.fl = other.fl, me.fl
	me.buf, other.buf = other.buf, me.buf
	me.blen, other.blen = other.blen, me.blen
	me.p, other.p = other.p, me.p
	me.r, other.r = other.r, me.r
	me.w, other.w = other.w, me.w
	me.rdErr, other.rdErr = other.rdErr, me.rdErr
	me.bufs, other.bufs = other.bufs, me.bufs
	me.fd, other.fd = other.fd, me.fd
	me.logger, other.logger = other.logger, me.logger
	me.encoding, other.encoding = other.encoding, me.encoding
	me.enc, other.enc = other.enc, me.enc
	me.lk, other.lk = other.lk, me.lk
}

func (me *Handle) readableNolock() bool {
	return me.fl&ForRead != 0
}

func (me *Handle) writableNolock() bool {
	return me.fl&ForWrite != 0
}

var _ interface {
	io.ReadWriteSeeker
	io.ByteReader
	io.ByteWriter
	io.StringWriter
	io.Closer
} = (*Handle)(nil)

// Returns EBADF so flag violations and missing backend capabilities read the
// same to callers.
func errBadFile() error {
	return syscall.EBADF
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
