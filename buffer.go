package fileio

import (
	"io"
	"log/slog"

	"github.com/anacrolix/missinggo/v2/panicif"
)

// Fallback when the backend has no descriptor or its block size is unusable.
const defaultBufferSize = 8 << 10

func (me *Handle) bufferUse() int {
	return me.p
}

func (me *Handle) spaceLeft() int {
	return me.blen - me.p
}

func (me *Handle) fitsInBuffer(n int) bool {
	return me.spaceLeft() >= n
}

func (me *Handle) bufferClear() bool {
	return me.p == 0
}

// Acquires the buffer on first buffered I/O. Also settles the buffer length
// and, when the open asked for buffering without choosing a flavour, whether
// writes are line or fully buffered.
func (me *Handle) prepareBuffer() {
	if me.buf != nil {
		return
	}
	blksize, tty := 0, false
	if fd, ok := me.fd.AsTuple(); ok {
		blksize, tty = statStream(fd)
	}
	if me.blen == 0 {
		if blksize > 0 {
			me.blen = blksize
		} else {
			me.blen = defaultBufferSize
		}
	}
	if me.fl.buffering() == Buffered {
		if tty {
			me.fl &^= FullyBuffered
		} else {
			me.fl &^= LineBuffered
		}
	}
	me.buf = me.bufs.Get(me.blen)[:me.blen]
	me.p = 0
	me.r = 0
	me.w = me.blen
	me.logger.Debug("sized stream buffer",
		slog.Int("len", me.blen),
		slog.Bool("line", me.fl&LineBuffered != 0))
}

// Seeks the backend to its end ahead of a physical write in append mode.
// Backends without seek get plain writes.
func (me *Handle) seekForAppend() error {
	if me.fl&AppendMode == 0 || !me.be.seekable() {
		return nil
	}
	_, err := me.be.seek(0, io.SeekEnd)
	return err
}

// Writes out everything the buffer holds. On failure the unwritten tail is
// moved to the buffer base so a later flush can retry it.
func (me *Handle) sflush() error {
	if err := me.seekForAppend(); err != nil {
		return err
	}
	off := 0
	for off < me.p {
		n, err := me.be.write(me.buf[off:me.p])
		off += n
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			rem := me.p - off
			copy(me.buf, me.buf[off:me.p])
			me.p = rem
			me.w = me.blen - rem
			return err
		}
	}
	me.p = 0
	me.w = me.blen
	return nil
}

// Refills the buffer from the backend. A zero-byte read marks sticky EOF.
// When the backend hands back data and an error in the same call, the data
// wins now and the error is surfaced on the next refill.
func (me *Handle) srefill() error {
	if me.fl&reachedEOF != 0 {
		return io.EOF
	}
	if err := me.rdErr; err != nil {
		me.rdErr = nil
		if err == io.EOF {
			me.fl |= reachedEOF
		}
		return err
	}
	n, err := me.be.read(me.buf[:me.blen])
	panicif.True(n > me.blen)
	me.p = 0
	me.r = n
	if n == 0 {
		if err == nil || err == io.EOF {
			me.fl |= reachedEOF
			return io.EOF
		}
		return err
	}
	if err != nil {
		if err == io.EOF {
			me.fl |= reachedEOF
		} else {
			me.rdErr = err
		}
	}
	return nil
}

// Toggles the handle into the reading direction, flushing pending writes
// first. Returns io.EOF without touching the backend once EOF is sticky.
func (me *Handle) prepareToRead() error {
	if me.fl&writing != 0 {
		if err := me.sflush(); err != nil {
			return err
		}
		me.fl &^= writing
	}
	me.fl |= reading
	if me.fl.buffering() != 0 {
		me.prepareBuffer()
	}
	if me.fl&reachedEOF != 0 {
		return io.EOF
	}
	return nil
}

// Toggles the handle into the writing direction, dropping any read-ahead.
func (me *Handle) prepareToWrite() {
	if me.fl&reading != 0 {
		me.fl &^= reading | reachedEOF
		me.p = 0
		me.r = 0
		me.w = me.blen
	}
	me.fl |= writing
	if me.fl.buffering() != 0 {
		me.prepareBuffer()
	}
}
