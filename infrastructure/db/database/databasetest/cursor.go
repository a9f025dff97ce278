// Package databasetest holds backend-independent checks that every
// database.Database implementation is expected to pass.
package databasetest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
)

// OpenFunc opens an empty database for a single check. The returned
// database is closed by the caller.
type OpenFunc func(t *testing.T) database.Database

// RunCursorTests runs the cursor checks against databases created by open.
func RunCursorTests(t *testing.T, open OpenFunc) {
	checks := []struct {
		name  string
		check func(t *testing.T, db database.Database)
	}{
		{"SeekAndExhaust", checkSeekAndExhaust},
		{"ClosedCursorErrors", checkClosedCursorErrors},
		{"ClosedCursorPanics", checkClosedCursorPanics},
		{"BucketIsolation", checkBucketIsolation},
		{"SparseKeys", checkSparseKeys},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			db := open(t)
			defer func() {
				err := db.Close()
				if err != nil {
					t.Fatalf("Close: %s", err)
				}
			}()
			c.check(t, db)
		})
	}
}

func blockKey(bucket *database.Bucket, i int) *database.Key {
	return bucket.Key(fmt.Appendf(nil, "block%02d", i))
}

func blockValue(i int) []byte {
	return fmt.Appendf(nil, "header%02d", i)
}

func putBlocks(t *testing.T, db database.DataAccessor, bucket *database.Bucket, indexes ...int) {
	for _, i := range indexes {
		err := db.Put(blockKey(bucket, i), blockValue(i))
		if err != nil {
			t.Fatalf("Put block%02d: %s", i, err)
		}
	}
}

func openCursor(t *testing.T, db database.DataAccessor, bucket *database.Bucket) database.Cursor {
	cursor, err := db.Cursor(bucket)
	if err != nil {
		t.Fatalf("Cursor: %s", err)
	}
	return cursor
}

func expectEntry(t *testing.T, cursor database.Cursor, key *database.Key, value []byte) {
	cursorKey, err := cursor.Key()
	if err != nil {
		t.Fatalf("Key: %s", err)
	}
	if !bytes.Equal(cursorKey.Bytes(), key.Bytes()) {
		t.Fatalf("cursor is at %s, expected %s", cursorKey, key)
	}
	cursorValue, err := cursor.Value()
	if err != nil {
		t.Fatalf("Value of %s: %s", cursorKey, err)
	}
	if !bytes.Equal(cursorValue, value) {
		t.Fatalf("value of %s is %q, expected %q", cursorKey, cursorValue, value)
	}
}

// collect walks cursor from First and returns the visited entry suffixes.
func collect(t *testing.T, cursor database.Cursor) []string {
	var suffixes []string
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %s", err)
		}
		suffixes = append(suffixes, string(key.Suffix()))
	}
	return suffixes
}

func checkSeekAndExhaust(t *testing.T, db database.Database) {
	bucket := database.MakeBucket([]byte("headers"))
	putBlocks(t, db, bucket, 0, 1, 2, 3, 4)

	cursor := openCursor(t, db, bucket)
	defer cursor.Close()

	if !cursor.First() {
		t.Fatalf("First returned false on a populated bucket")
	}
	expectEntry(t, cursor, blockKey(bucket, 0), blockValue(0))

	err := cursor.Seek(blockKey(bucket, 9))
	if !database.IsNotFoundError(err) {
		t.Fatalf("Seek past the last key: expected ErrNotFound, got %v", err)
	}

	err = cursor.Seek(blockKey(bucket, 4))
	if err != nil {
		t.Fatalf("Seek: %s", err)
	}
	expectEntry(t, cursor, blockKey(bucket, 4), blockValue(4))

	if cursor.Next() {
		t.Fatalf("Next after the last key returned true")
	}
	_, err = cursor.Key()
	if !database.IsNotFoundError(err) {
		t.Fatalf("Key on an exhausted cursor: expected ErrNotFound, got %v", err)
	}
	_, err = cursor.Value()
	if !database.IsNotFoundError(err) {
		t.Fatalf("Value on an exhausted cursor: expected ErrNotFound, got %v", err)
	}
}

func checkClosedCursorErrors(t *testing.T, db database.Database) {
	operations := map[string]func(cursor database.Cursor) error{
		"Seek": func(cursor database.Cursor) error {
			return cursor.Seek(database.MakeBucket(nil).Key([]byte{}))
		},
		"Key": func(cursor database.Cursor) error {
			_, err := cursor.Key()
			return err
		},
		"Value": func(cursor database.Cursor) error {
			_, err := cursor.Value()
			return err
		},
		"Close": func(cursor database.Cursor) error {
			return cursor.Close()
		},
	}
	for name, operation := range operations {
		cursor := openCursor(t, db, database.MakeBucket(nil))
		err := cursor.Close()
		if err != nil {
			t.Fatalf("Close: %s", err)
		}
		err = operation(cursor)
		if err == nil || !strings.Contains(err.Error(), "closed cursor") {
			t.Fatalf("%s on a closed cursor: expected a closed cursor error, got %v", name, err)
		}
	}
}

func checkClosedCursorPanics(t *testing.T, db database.Database) {
	bucket := database.MakeBucket([]byte("headers"))
	putBlocks(t, db, bucket, 0, 1)

	cursor := openCursor(t, db, bucket)
	err := cursor.Close()
	if err != nil {
		t.Fatalf("Close: %s", err)
	}

	moves := map[string]func() bool{"First": cursor.First, "Next": cursor.Next}
	for name, move := range moves {
		func() {
			defer func() {
				recovered := recover()
				if recovered == nil {
					t.Fatalf("%s on a closed cursor did not panic", name)
				}
				if !strings.Contains(fmt.Sprint(recovered), "closed cursor") {
					t.Fatalf("%s on a closed cursor panicked with %v", name, recovered)
				}
			}()
			move()
		}()
	}
}

// checkBucketIsolation makes sure a cursor never leaves its bucket, including
// the case where one bucket name is a prefix of another.
func checkBucketIsolation(t *testing.T, db database.Database) {
	children := database.MakeBucket([]byte("children"))
	nested := children.Bucket([]byte("nested"))
	siblings := database.MakeBucket([]byte("childrenx"))
	putBlocks(t, db, children, 1, 2)
	putBlocks(t, db, siblings, 0, 3)

	cursor := openCursor(t, db, nested)
	defer cursor.Close()
	if cursor.First() {
		t.Fatalf("cursor over an empty nested bucket returned an entry")
	}

	siblingCursor := openCursor(t, db, siblings)
	defer siblingCursor.Close()
	got := collect(t, siblingCursor)
	if len(got) != 2 || got[0] != "block00" || got[1] != "block03" {
		t.Fatalf("unexpected entries in the sibling bucket: %v", got)
	}
}

func checkSparseKeys(t *testing.T, db database.Database) {
	bucket := database.MakeBucket([]byte("ghostdag"))
	empty := openCursor(t, db, bucket)
	defer empty.Close()
	if empty.First() {
		t.Fatalf("First returned true on an empty bucket")
	}

	putBlocks(t, db, bucket, 7, 0, 3)

	cursor := openCursor(t, db, bucket)
	defer cursor.Close()
	got := collect(t, cursor)
	expected := []string{"block00", "block03", "block07"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected keys in order %v, got %v", expected, got)
	}

	err := cursor.Seek(blockKey(bucket, 4))
	if err != nil {
		t.Fatalf("Seek between keys: %s", err)
	}
	expectEntry(t, cursor, blockKey(bucket, 7), blockValue(7))
}
