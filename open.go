package fileio

import (
	"log/slog"
	"os"
	"strings"
	"syscall"

	g "github.com/anacrolix/generics"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// OpenOpts configures OpenFileOpts. Path and Mode are required.
type OpenOpts struct {
	Path string
	// A C-style mode string: kind 'r', 'w', 'a' or 'x', optional 'b', '+',
	// 'b+' or '+b' suffix, optional ",ccs=NAME" encoding selector.
	Mode string
	// Permissions for created files. Defaults to 0666 before umask.
	Perm       os.FileMode
	BufferSize g.Option[int]
	Buffers    BufferSource
	Logger     *slog.Logger
}

// OpenFile opens the named file per the mode string and wraps it in a
// buffered Handle. Buffering defaults to line buffered on terminals and
// fully buffered everywhere else.
func OpenFile(path, mode string) (*Handle, error) {
	return OpenFileOpts(OpenOpts{Path: path, Mode: mode})
}

func OpenFileOpts(opts OpenOpts) (*Handle, error) {
	fl, osflag, enc, err := parseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	if opts.Perm == 0 {
		opts.Perm = 0o666
	}
	f, err := os.OpenFile(opts.Path, osflag, opts.Perm)
	if err != nil {
		return nil, err
	}
	return NewOpts(HandleOpts{
		Backend:    f,
		Flags:      fl,
		BufferSize: opts.BufferSize,
		Buffers:    opts.Buffers,
		Logger:     opts.Logger,
		Encoding:   enc,
	}), nil
}

// The mode-string grammar:
//
//	mode    := kind [suffix] [encoding]
//	kind    := 'r' | 'w' | 'a' | 'x'
//	suffix  := 'b' | '+' | 'b+' | '+b'
//	encoding:= ',' SP* 'ccs=' name
//
// Anything else is EINVAL.
func parseMode(mode string) (fl OpenFlag, osflag int, enc encoding.Encoding, err error) {
	bad := func() error {
		return errors.Wrapf(syscall.EINVAL, "mode %q", mode)
	}
	if mode == "" {
		err = bad()
		return
	}
	fl = Buffered
	switch mode[0] {
	case 'r':
		fl |= ForRead
	case 'w':
		fl |= ForWrite
		osflag = os.O_CREATE | os.O_TRUNC
	case 'a':
		fl |= ForWrite | AppendMode
		osflag = os.O_CREATE | os.O_APPEND
	case 'x':
		fl |= ForWrite
		osflag = os.O_CREATE | os.O_EXCL
	default:
		err = bad()
		return
	}
	rest := mode[1:]
	if strings.HasPrefix(rest, "b+") || strings.HasPrefix(rest, "+b") {
		fl |= ForRead | ForWrite | Binary
		rest = rest[2:]
	} else if rest != "" {
		switch rest[0] {
		case 'b':
			fl |= Binary
			rest = rest[1:]
		case '+':
			fl |= ForRead | ForWrite
			rest = rest[1:]
		}
	}
	if fl&Binary == 0 && strings.HasPrefix(rest, ",") {
		rest = strings.TrimLeft(rest[1:], " ")
		name, found := strings.CutPrefix(rest, "ccs=")
		if !found {
			err = bad()
			return
		}
		switch strings.ToLower(name) {
		case "utf-8":
			enc = unicode.UTF8
		case "utf-16le", "unicode":
			enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		case "ansi":
			enc = charmap.Windows1252
		default:
			err = bad()
			return
		}
		rest = ""
	}
	if rest != "" {
		err = bad()
		return
	}
	switch fl & (ForRead | ForWrite) {
	case ForRead:
		osflag |= os.O_RDONLY
	case ForWrite:
		osflag |= os.O_WRONLY
	default:
		osflag |= os.O_RDWR
	}
	return
}
