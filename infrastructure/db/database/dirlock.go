package database

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockFileName = ".lock"

// ErrDirectoryLocked is returned by LockDirectory when another
// process already holds the lock of the given directory.
var ErrDirectoryLocked = errors.New("database directory is locked by another process")

// DirectoryLock is an exclusive lock over a database directory.
type DirectoryLock struct {
	fileLock *flock.Flock
}

// LockDirectory creates path if needed and takes an exclusive
// lock over it. The lock is released by Unlock.
func LockDirectory(path string) (*DirectoryLock, error) {
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create database directory %s", path)
	}

	fileLock := flock.New(filepath.Join(path, lockFileName))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock database directory %s", path)
	}
	if !locked {
		return nil, errors.Wrapf(ErrDirectoryLocked, "path %s", path)
	}
	return &DirectoryLock{fileLock: fileLock}, nil
}

// Unlock releases the directory lock.
func (l *DirectoryLock) Unlock() error {
	return l.fileLock.Unlock()
}
