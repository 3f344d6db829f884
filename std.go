package fileio

import (
	"os"

	"github.com/anacrolix/sync"
)

// Process-wide handles over the standard descriptors. Each carries its own
// mutex as lock target, so they are safe for concurrent use out of the box.
// Locking can replace it with a lock shared with other users of the same
// descriptor.
var (
	In  = newStdStream(os.Stdin, ForRead|Buffered)
	Out = newStdStream(os.Stdout, ForWrite|Buffered)
	Err = newStdStream(os.Stderr, ForWrite)
)

func newStdStream(f *os.File, fl OpenFlag) *Handle {
	h := New(borrowedStream{f}, fl)
	h.Locking(new(sync.Mutex))
	return h
}

// borrowedStream wraps a stream the process doesn't own. Closing the handle
// leaves the descriptor open.
type borrowedStream struct {
	*os.File
}

func (borrowedStream) Close() error {
	return nil
}
