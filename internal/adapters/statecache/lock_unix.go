//go:build unix

package statecache

import (
	"os"

	"golang.org/x/sys/unix"
)

type lockFile struct {
	f *os.File
}

func newLockFile(fname string) (*lockFile, error) {
	f, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0o644) //nolint:gosec // Lock path is derived from the build dir
	if err != nil {
		return nil, err
	}
	return &lockFile{f: f}, nil
}

func (l *lockFile) Close() error {
	return l.f.Close()
}

// Lock blocks until the exclusive lock is held.
func (l *lockFile) Lock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_EX)
}

func (l *lockFile) Unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
