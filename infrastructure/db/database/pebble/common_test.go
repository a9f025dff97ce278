package pebble

import (
	"os"
	"testing"

	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
)

const logLevel = logger.LevelWarn

func TestMain(m *testing.M) {
	logger.SetLogLevels(logLevel)
	logger.InitLogStdout(logLevel)
	os.Exit(m.Run())
}

func prepareDatabaseForTest(t *testing.T, testName string) (pdb *PebbleDB, teardownFunc func()) {
	// Create a temp db to run tests against
	path := t.TempDir()
	pdb, err := NewPebbleDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewPebbleDB unexpectedly failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = pdb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
	}
	return pdb, teardownFunc
}
