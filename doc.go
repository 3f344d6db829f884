// Package fileio provides a buffered, optionally thread-safe file handle over
// arbitrary byte streams. A Handle wraps any value that implements some subset
// of the standard I/O capabilities (io.Reader, io.Writer, io.Seeker,
// io.Closer, Truncate, Fd) and layers buffering on top: unbuffered, fully
// buffered, or line buffered, with append-mode write semantics and rune
// output through a configurable text encoding.
//
// Handles are synchronous. Attach a lock target with Handle.Locking to make
// every public operation atomic with respect to other users of the same lock.
package fileio
