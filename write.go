package fileio

import (
	"bytes"
	"io"
)

// Write accepts p for output. The count reflects bytes accepted: deposited in
// the buffer or physically written. Writing zero bytes always succeeds.
func (me *Handle) Write(p []byte) (int, error) {
	me.lock()
	defer me.unlock()
	return me.writeNolock(p)
}

// WriteString is Write for strings.
func (me *Handle) WriteString(s string) (int, error) {
	return me.Write([]byte(s))
}

func (me *Handle) writeNolock(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !me.writableNolock() {
		return 0, errBadFile()
	}
	me.prepareToWrite()
	switch me.fl.buffering() {
	case FullyBuffered:
		return me.swriteB(p)
	case LineBuffered:
		return me.swriteLine(p)
	default:
		return me.swrite(p)
	}
}

// swrite pushes p through the backend unbuffered, retrying short writes.
func (me *Handle) swrite(p []byte) (n int, err error) {
	if err = me.seekForAppend(); err != nil {
		return
	}
	for n < len(p) {
		var m int
		m, err = me.be.write(p[n:])
		n += m
		if err != nil {
			return
		}
		if m == 0 {
			return n, io.ErrShortWrite
		}
	}
	return
}

// swriteB accumulates p in the buffer, flushing when full. A chunk at least
// a whole buffer long meeting an empty buffer skips the copy and goes
// straight to the backend.
func (me *Handle) swriteB(p []byte) (n int, err error) {
	for len(p) > 0 {
		m := min(me.spaceLeft(), len(p))
		switch {
		case m == 0:
			if err = me.sflush(); err != nil {
				return
			}
		case m == me.blen:
			var k int
			k, err = me.swrite(p[:m])
			n += k
			if err != nil {
				return
			}
			p = p[m:]
		default:
			me.copyToBuffer(p[:m])
			n += m
			p = p[m:]
		}
	}
	return
}

func (me *Handle) copyToBuffer(p []byte) {
	copy(me.buf[me.p:], p)
	me.p += len(p)
	me.w -= len(p)
}

// Line-buffered writes must hand the backend everything up to and including
// the last newline of the call before returning; only the tail after it may
// wait in the buffer. A leading newline is not special: any newline takes
// the flush path.
func (me *Handle) swriteLine(p []byte) (n int, err error) {
	if me.bufferClear() && p[len(p)-1] == '\n' {
		return me.swrite(p)
	}
	i := bytes.LastIndexByte(p, '\n')
	if i < 0 {
		return me.swriteB(p)
	}
	d := i + 1
	if !me.bufferClear() && me.fitsInBuffer(d) {
		me.copyToBuffer(p[:d])
		n += d
		err = me.sflush()
	} else {
		// Not trying to fill the buffer.
		if err = me.sflush(); err == nil {
			var k int
			k, err = me.swrite(p[:d])
			n += k
		}
	}
	if err != nil {
		return
	}
	var k int
	k, err = me.swriteB(p[d:])
	n += k
	return
}

// WriteByte appends a single byte, flushing when line buffering sees a
// newline or the buffer runs out of room.
func (me *Handle) WriteByte(c byte) error {
	me.lock()
	defer me.unlock()
	return me.writeByteNolock(c)
}

func (me *Handle) writeByteNolock(c byte) error {
	if me.fl&writing != 0 && me.w > 0 &&
		(c != '\n' || me.fl.buffering() != LineBuffered) {
		me.buf[me.p] = c
		me.p++
		me.w--
		return nil
	}
	if !me.writableNolock() {
		return errBadFile()
	}
	me.prepareToWrite()
	if me.fl.buffering() == 0 {
		a := [1]byte{c}
		_, err := me.swrite(a[:])
		return err
	}
	if me.spaceLeft() == 0 {
		if err := me.sflush(); err != nil {
			return err
		}
	}
	me.buf[me.p] = c
	me.p++
	me.w--
	if c == '\n' && me.fl.buffering() == LineBuffered {
		return me.sflush()
	}
	return nil
}
