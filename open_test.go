package fileio

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestParseModeTable(t *testing.T) {
	for _, tc := range []struct {
		mode   string
		fl     OpenFlag
		osflag int
	}{
		{"r", ForRead, os.O_RDONLY},
		{"rb", ForRead | Binary, os.O_RDONLY},
		{"r+", ForRead | ForWrite, os.O_RDWR},
		{"rb+", ForRead | ForWrite | Binary, os.O_RDWR},
		{"r+b", ForRead | ForWrite | Binary, os.O_RDWR},
		{"w", ForWrite, os.O_WRONLY | os.O_CREATE | os.O_TRUNC},
		{"w+", ForRead | ForWrite, os.O_RDWR | os.O_CREATE | os.O_TRUNC},
		{"a", ForWrite | AppendMode, os.O_WRONLY | os.O_CREATE | os.O_APPEND},
		{"a+", ForRead | ForWrite | AppendMode, os.O_RDWR | os.O_CREATE | os.O_APPEND},
		{"x", ForWrite, os.O_WRONLY | os.O_CREATE | os.O_EXCL},
		{"x+", ForRead | ForWrite, os.O_RDWR | os.O_CREATE | os.O_EXCL},
	} {
		t.Run(tc.mode, func(t *testing.T) {
			fl, osflag, enc, err := parseMode(tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.fl|Buffered, fl)
			assert.Equal(t, tc.osflag, osflag)
			assert.Nil(t, enc)
		})
	}
}

func TestParseModeEncodings(t *testing.T) {
	fl, _, enc, err := parseMode("w,ccs=utf-8")
	require.NoError(t, err)
	assert.Equal(t, ForWrite|Buffered, fl)
	assert.Equal(t, unicode.UTF8, enc)

	_, _, enc, err = parseMode("a+, ccs=UTF-16LE")
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), enc)

	_, _, enc, err = parseMode("r,ccs=unicode")
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), enc)

	_, _, enc, err = parseMode("w,ccs=ansi")
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, enc)
}

func TestParseModeInvalid(t *testing.T) {
	for _, mode := range []string{
		"",
		"rw",
		"r+,",
		"q",
		"r++",
		"rbb",
		"w,css=utf-8",
		"r,ccs=klingon",
		// No text-mode encodings on binary streams.
		"rb,ccs=utf-8",
		"wb+,ccs=utf-16le",
	} {
		t.Run(mode, func(t *testing.T) {
			_, _, _, err := parseMode(mode)
			qt.Assert(t, qt.ErrorIs(err, syscall.EINVAL))
		})
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("badMode", func(t *testing.T) {
		_, err := OpenFile(filepath.Join(dir, "f"), "rw")
		assert.ErrorIs(t, err, syscall.EINVAL)
	})

	t.Run("missingFile", func(t *testing.T) {
		_, err := OpenFile(filepath.Join(dir, "missing"), "r")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("exclusiveOnExisting", func(t *testing.T) {
		p := filepath.Join(dir, "exists")
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		_, err := OpenFile(p, "x")
		assert.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("truncatesOnW", func(t *testing.T) {
		p := filepath.Join(dir, "trunc")
		require.NoError(t, os.WriteFile(p, []byte("old content"), 0o644))

		fh, err := OpenFile(p, "w")
		require.NoError(t, err)
		_, err = fh.WriteString("new")
		require.NoError(t, err)
		require.NoError(t, fh.Close())

		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "new", string(b))
	})

	t.Run("appendsOnA", func(t *testing.T) {
		p := filepath.Join(dir, "app")
		require.NoError(t, os.WriteFile(p, []byte("one"), 0o644))

		fh, err := OpenFile(p, "a")
		require.NoError(t, err)
		assert.False(t, fh.Readable())
		assert.True(t, fh.Writable())
		_, err = fh.WriteString("two")
		require.NoError(t, err)
		require.NoError(t, fh.Close())

		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "onetwo", string(b))
	})

	t.Run("readWriteRoundTrip", func(t *testing.T) {
		p := filepath.Join(dir, "rt")
		fh, err := OpenFile(p, "w+b")
		require.NoError(t, err)
		assert.True(t, fh.Readable())
		assert.True(t, fh.Writable())

		_, err = fh.WriteString("payload")
		require.NoError(t, err)
		require.NoError(t, fh.Flush())
		require.NoError(t, fh.Rewind())

		got := make([]byte, 16)
		n, err := fh.Read(got)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "payload", string(got[:n]))
		require.NoError(t, fh.Close())
	})
}
