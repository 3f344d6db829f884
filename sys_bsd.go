//go:build unix && !linux

package fileio

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TIOCGETA
