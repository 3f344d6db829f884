package fileio

import (
	"syscall"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"
)

// Worst case for one encoded rune across the supported encodings: four bytes
// covers UTF-8 and a UTF-16 surrogate pair.
const maxEncodedRune = 4

// Scratch run length for unbuffered rune-string output.
const wideScratchLen = 64

// encodeRune converts r through the handle's stateful encoder into dst,
// returning the encoded length. Invalid or unmappable runes fail with EILSEQ.
func (me *Handle) encodeRune(r rune, dst []byte) (int, error) {
	if !utf8.ValidRune(r) {
		return 0, errors.Wrapf(syscall.EILSEQ, "encoding %q", r)
	}
	if me.enc == nil {
		me.enc = me.encoding.NewEncoder()
	}
	var u [utf8.UTFMax]byte
	k := utf8.EncodeRune(u[:], r)
	nDst, _, err := me.enc.Transform(dst, u[:k], false)
	if err != nil {
		if err == transform.ErrShortDst {
			return 0, err
		}
		return nDst, errors.Wrapf(syscall.EILSEQ, "encoding %q", r)
	}
	return nDst, nil
}

// WriteRune encodes a single rune through the handle's encoding and writes
// it out under the usual buffering rules. The count is encoded bytes.
func (me *Handle) WriteRune(r rune) (int, error) {
	me.lock()
	defer me.unlock()
	return me.writeRuneNolock(r)
}

func (me *Handle) writeRuneNolock(r rune) (int, error) {
	if !me.writableNolock() {
		return 0, errBadFile()
	}
	me.prepareToWrite()
	if me.fl.buffering() == 0 {
		var scratch [maxEncodedRune]byte
		k, err := me.encodeRune(r, scratch[:])
		if err != nil {
			return 0, err
		}
		return me.swrite(scratch[:k])
	}
	if !me.fitsInBuffer(maxEncodedRune) {
		if err := me.sflush(); err != nil {
			return 0, err
		}
	}
	var n int
	var err error
	if me.fitsInBuffer(maxEncodedRune) {
		n, err = me.encodeRune(r, me.buf[me.p:])
		if err != nil {
			return 0, err
		}
		me.p += n
		me.w -= n
	} else {
		// Buffer shorter than one encoded rune. Bounce through scratch.
		var scratch [maxEncodedRune]byte
		k, err := me.encodeRune(r, scratch[:])
		if err != nil {
			return 0, err
		}
		n, err = me.swriteB(scratch[:k])
		if err != nil {
			return n, err
		}
	}
	if r == '\n' && me.fl.buffering() == LineBuffered {
		if err := me.sflush(); err != nil {
			return n, err
		}
	}
	return n, err
}

// WriteRunes encodes s and writes it out. Line buffering splits at the last
// newline: everything through it reaches the backend before the call
// returns. The count is encoded bytes accepted; on an encoder failure it
// covers the runes successfully converted before the bad one.
func (me *Handle) WriteRunes(s []rune) (int, error) {
	me.lock()
	defer me.unlock()
	return me.writeRunesNolock(s)
}

func (me *Handle) writeRunesNolock(s []rune) (n int, err error) {
	if len(s) == 0 {
		return 0, nil
	}
	if !me.writableNolock() {
		return 0, errBadFile()
	}
	me.prepareToWrite()
	switch me.fl.buffering() {
	case FullyBuffered:
		return me.swritewB(s)
	case LineBuffered:
		i := -1
		for j, r := range s {
			if r == '\n' {
				i = j
			}
		}
		if i < 0 {
			return me.swritewB(s)
		}
		n, err = me.swritewB(s[:i+1])
		if err == nil {
			err = me.sflush()
		}
		if err != nil {
			return
		}
		var k int
		k, err = me.swritewB(s[i+1:])
		n += k
		return
	default:
		return me.swritew(s)
	}
}

// swritewB encodes runes into the buffer a rune at a time, flushing as it
// fills.
func (me *Handle) swritewB(s []rune) (n int, err error) {
	for _, r := range s {
		if !me.fitsInBuffer(maxEncodedRune) {
			if err = me.sflush(); err != nil {
				return
			}
		}
		if me.fitsInBuffer(maxEncodedRune) {
			var k int
			k, err = me.encodeRune(r, me.buf[me.p:])
			if err != nil {
				return
			}
			me.p += k
			me.w -= k
			n += k
		} else {
			var scratch [maxEncodedRune]byte
			var k, kk int
			k, err = me.encodeRune(r, scratch[:])
			if err != nil {
				return
			}
			kk, err = me.swriteB(scratch[:k])
			n += kk
			if err != nil {
				return
			}
		}
	}
	return
}

// swritew encodes runes into a fixed scratch run and writes whole runs at a
// time, for unbuffered handles.
func (me *Handle) swritew(s []rune) (n int, err error) {
	var scratch [wideScratchLen]byte
	fill := 0
	for _, r := range s {
		if fill+maxEncodedRune > len(scratch) {
			var k int
			k, err = me.swrite(scratch[:fill])
			n += k
			if err != nil {
				return
			}
			fill = 0
		}
		var k int
		k, err = me.encodeRune(r, scratch[fill:])
		if err != nil {
			// Push out what was already converted before reporting.
			var kk int
			kk, _ = me.swrite(scratch[:fill])
			n += kk
			return
		}
		fill += k
	}
	var k int
	k, err = me.swrite(scratch[:fill])
	n += k
	return
}
