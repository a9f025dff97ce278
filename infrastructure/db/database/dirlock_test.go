package database

import (
	"testing"

	"github.com/pkg/errors"
)

func TestLockDirectory(t *testing.T) {
	path := t.TempDir()

	lock, err := LockDirectory(path)
	if err != nil {
		t.Fatalf("LockDirectory: %s", err)
	}

	_, err = LockDirectory(path)
	if !errors.Is(err, ErrDirectoryLocked) {
		t.Fatalf("expected ErrDirectoryLocked, got: %v", err)
	}

	err = lock.Unlock()
	if err != nil {
		t.Fatalf("Unlock: %s", err)
	}

	lock, err = LockDirectory(path)
	if err != nil {
		t.Fatalf("LockDirectory after Unlock: %s", err)
	}
	err = lock.Unlock()
	if err != nil {
		t.Fatalf("Unlock: %s", err)
	}
}
