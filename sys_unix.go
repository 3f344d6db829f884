//go:build unix

package fileio

import (
	"golang.org/x/sys/unix"
)

// statStream reports the descriptor's preferred block size, and whether it is
// a character device attached to a terminal. Zero block size means no usable
// answer.
func statStream(fd int) (blksize int, tty bool) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, false
	}
	blksize = int(st.Blksize)
	if st.Mode&unix.S_IFMT == unix.S_IFCHR {
		_, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
		tty = err == nil
	}
	return
}
