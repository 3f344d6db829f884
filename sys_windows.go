package fileio

// Windows has no st_blksize, so buffered handles get the default length, and
// the line-buffering heuristic sees no terminals.
func statStream(fd int) (blksize int, tty bool) {
	return 0, false
}
