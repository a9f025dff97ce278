package pebble

import (
	"bytes"
	"context"
	"io"

	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/cockroachdb/pebble/v2"
	"github.com/pkg/errors"
)

// compactionUpperBound is greater than every key produced by
// database.Bucket, whose paths are built from printable bucket names.
var compactionUpperBound = []byte{0xff, 0xff, 0xff, 0xff}

// PebbleDB defines a thin wrapper around pebble.
type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB opens a pebble instance defined by the given path.
func NewPebbleDB(path string, cacheSizeMiB int) (*PebbleDB, error) {
	options := Options(cacheSizeMiB)
	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening pebble database at %s", path)
	}
	return &PebbleDB{db: db}, nil
}

// Compact compacts the whole key space of the pebble instance.
func (db *PebbleDB) Compact() error {
	err := db.db.Compact(context.Background(), []byte{}, compactionUpperBound, true)
	return errors.WithStack(err)
}

// Close closes the pebble instance.
func (db *PebbleDB) Close() error {
	err := db.db.Close()
	return errors.WithStack(err)
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *PebbleDB) Put(key *database.Key, value []byte) error {
	err := db.db.Set(key.Bytes(), value, pebble.Sync)
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *PebbleDB) Get(key *database.Key) ([]byte, error) {
	return get(db.db, key)
}

// Has returns true if the database does contains the
// given key.
func (db *PebbleDB) Has(key *database.Key) (bool, error) {
	return has(db.db, key)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *PebbleDB) Delete(key *database.Key) error {
	err := db.db.Delete(key.Bytes(), pebble.Sync)
	return errors.WithStack(err)
}

// Cursor begins a new cursor over the given bucket.
func (db *PebbleDB) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	iterator, err := db.db.NewIter(bucketIterOptions(bucket))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return newPebbleCursor(iterator, bucket), nil
}

// pebble.DB and indexed pebble.Batch share this reader method.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func get(r reader, key *database.Key) ([]byte, error) {
	value, closer, err := r.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	defer closer.Close()

	// The value is only valid until the closer is closed.
	return bytes.Clone(value), nil
}

func has(r reader, key *database.Key) (bool, error) {
	_, closer, err := r.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, errors.WithStack(closer.Close())
}

func bucketIterOptions(bucket *database.Bucket) *pebble.IterOptions {
	lowerBound := bucket.Path()
	return &pebble.IterOptions{
		LowerBound: lowerBound,
		UpperBound: prefixUpperBound(lowerBound),
	}
}

// prefixUpperBound returns the smallest key that is greater than every key
// starting with prefix, or nil if no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	upperBound := bytes.Clone(prefix)
	for i := len(upperBound) - 1; i >= 0; i-- {
		upperBound[i]++
		if upperBound[i] != 0 {
			return upperBound[:i+1]
		}
	}
	return nil
}
