package pebble

import (
	"bytes"

	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/cockroachdb/pebble/v2"
	"github.com/pkg/errors"
)

// PebbleCursor is a thin wrapper around native pebble iterators.
type PebbleCursor struct {
	iterator *pebble.Iterator
	bucket   *database.Bucket

	isClosed bool
}

func newPebbleCursor(iterator *pebble.Iterator, bucket *database.Bucket) *PebbleCursor {
	return &PebbleCursor{
		iterator: iterator,
		bucket:   bucket,
		isClosed: false,
	}
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted. Panics if the cursor is closed.
func (c *PebbleCursor) Next() bool {
	if c.isClosed {
		panic("cannot call next on a closed cursor")
	}
	return c.iterator.Next()
}

// First moves the iterator to the first key/value pair. It returns false if
// such a pair does not exist. Panics if the cursor is closed.
func (c *PebbleCursor) First() bool {
	if c.isClosed {
		panic("cannot call first on a closed cursor")
	}
	return c.iterator.First()
}

// Seek moves the iterator to the first key/value pair whose key is greater
// than or equal to the given key. It returns ErrNotFound if such pair does not
// exist.
func (c *PebbleCursor) Seek(key *database.Key) error {
	if c.isClosed {
		return errors.New("cannot seek a closed cursor")
	}

	if !c.iterator.SeekGE(key.Bytes()) {
		return errors.Wrapf(database.ErrNotFound, "key %s not found", key)
	}
	return nil
}

// Key returns the key of the current key/value pair, or ErrNotFound if done.
func (c *PebbleCursor) Key() (*database.Key, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	if !c.iterator.Valid() {
		return nil, errors.Wrapf(database.ErrNotFound, "cannot get the "+
			"key of an exhausted cursor")
	}
	suffix := bytes.TrimPrefix(c.iterator.Key(), c.bucket.Path())
	return c.bucket.Key(bytes.Clone(suffix)), nil
}

// Value returns the value of the current key/value pair, or ErrNotFound if done.
// The caller should not modify the contents of the returned slice, and its
// contents may change on the next call to Next.
func (c *PebbleCursor) Value() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	if !c.iterator.Valid() {
		return nil, errors.Wrapf(database.ErrNotFound, "cannot get the "+
			"value of an exhausted cursor")
	}
	return c.iterator.Value(), nil
}

// Close releases associated resources.
func (c *PebbleCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	err := c.iterator.Close()
	c.iterator = nil
	c.bucket = nil
	return errors.WithStack(err)
}
