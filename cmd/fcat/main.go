// fcat concatenates files through fileio handles, mostly to exercise the
// library from the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/anacrolix/fileio"
)

func main() {
	var args struct {
		Files      []string `arg:"positional" help:"files to concatenate; stdin when empty"`
		Unbuffered bool     `arg:"-u" help:"don't buffer output"`
		LineBuf    bool     `arg:"-l" help:"line buffer output"`
		BufSize    int      `arg:"-b" help:"buffer length for input handles"`
	}
	arg.MustParse(&args)
	out := fileio.Out
	if args.Unbuffered {
		out = fileio.New(borrowedStdout{}, fileio.ForWrite)
	} else if args.LineBuf {
		out = fileio.New(borrowedStdout{}, fileio.ForWrite|fileio.LineBuffered)
	}
	err := run(args.Files, args.BufSize, out)
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fcat: %v\n", err)
		os.Exit(1)
	}
}

func run(files []string, bufSize int, out *fileio.Handle) error {
	if len(files) == 0 {
		return copyAll(fileio.In, out)
	}
	for _, name := range files {
		fh, err := open(name, bufSize)
		if err != nil {
			return err
		}
		err = copyAll(fh, out)
		if closeErr := fh.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func open(name string, bufSize int) (*fileio.Handle, error) {
	opts := fileio.OpenOpts{Path: name, Mode: "r"}
	if bufSize > 0 {
		opts.BufferSize.Set(bufSize)
	}
	return fileio.OpenFileOpts(opts)
}

func copyAll(src, dst *fileio.Handle) error {
	buf := make([]byte, 32<<10)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// borrowedStdout writes to stdout without owning it.
type borrowedStdout struct{}

func (borrowedStdout) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}
