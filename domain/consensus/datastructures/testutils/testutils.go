package testutils

import (
	"testing"

	consensusdatabase "github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database/ldb"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database/pebble"
)

type databaseOpenFunc func(path string) (database.Database, error)

var databaseOpenFuncs = map[string]databaseOpenFunc{
	"ldb": func(path string) (database.Database, error) {
		return ldb.NewLevelDB(path, 8)
	},
	"pebble": func(path string) (database.Database, error) {
		return pebble.NewPebbleDB(path, 8)
	},
}

// NewTestDB creates a temporary LevelDB-backed consensus DBManager and a prefix bucket for stores.
func NewTestDB(t *testing.T) (dbManager model.DBManager, prefixBucket model.DBBucket, teardown func()) {
	t.Helper()
	return newTestDBOfType(t, "ldb")
}

func newTestDBOfType(t *testing.T, dbType string) (dbManager model.DBManager, prefixBucket model.DBBucket, teardown func()) {
	t.Helper()

	db, err := databaseOpenFuncs[dbType](t.TempDir())
	if err != nil {
		t.Fatalf("open %s: %v", dbType, err)
	}

	dbManager = consensusdatabase.New(db)
	prefixBucket = consensusdatabase.MakeBucket([]byte("datastructures-test"))

	teardown = func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("close %s: %v", dbType, err)
		}
	}

	return dbManager, prefixBucket, teardown
}

// ForAllDatabaseTypes runs testFunc once against a fresh database of every
// supported backend.
func ForAllDatabaseTypes(t *testing.T, testFunc func(t *testing.T, dbManager model.DBManager, prefixBucket model.DBBucket)) {
	for _, dbType := range []string{"ldb", "pebble"} {
		t.Run(dbType, func(t *testing.T) {
			dbManager, prefixBucket, teardown := newTestDBOfType(t, dbType)
			defer teardown()
			testFunc(t, dbManager, prefixBucket)
		})
	}
}

// Commit commits the given staging area inside a DB transaction.
func Commit(t *testing.T, dbManager model.DBManager, stagingArea *model.StagingArea) {
	t.Helper()

	dbTx, err := dbManager.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	if err := stagingArea.Commit(dbTx); err != nil {
		t.Fatalf("stagingArea.Commit: %v", err)
	}
	if err := dbTx.Commit(); err != nil {
		t.Fatalf("dbTx.Commit: %v", err)
	}
	stagingArea.UpdateCaches()
}

// Hash returns a deterministic DomainHash for test i.
// It's intentionally not cryptographically random.
func Hash(i byte) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	for j := range len(arr) {
		arr[j] = i
	}
	// Make it slightly less uniform to catch byte-order issues.
	arr[1] = i + 1
	arr[2] = i + 2
	return externalapi.NewDomainHashFromByteArray(&arr)
}
