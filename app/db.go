package app

import (
	"os"

	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database/ldb"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database/pebble"
	"github.com/pkg/errors"
)

// openDatabase locks the data directory of cfg and opens the configured
// database backend over it. The returned close function closes the
// database and releases the lock.
func openDatabase(cfg *Config) (db database.Database, closeDB func(), err error) {
	dataDir := cfg.DataDir()
	if cfg.ResetDB {
		log.Infof("Removing the database at %s", dataDir)
		err := os.RemoveAll(dataDir)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to remove %s", dataDir)
		}
	}

	lock, err := database.LockDirectory(dataDir)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			unlockErr := lock.Unlock()
			if unlockErr != nil {
				log.Errorf("Failed to unlock %s: %s", dataDir, unlockErr)
			}
		}
	}()

	versionFileExists, err := checkDatabaseVersion(dataDir)
	if err != nil {
		return nil, nil, err
	}

	log.Infof("Loading the %s database from '%s'", cfg.DBBackend, dataDir)
	switch cfg.DBBackend {
	case backendPebble:
		db, err = pebble.NewPebbleDB(dataDir, cfg.DBCacheMiB)
	default:
		db, err = ldb.NewLevelDB(dataDir, cfg.DBCacheMiB)
	}
	if err != nil {
		return nil, nil, err
	}

	if !versionFileExists {
		err = createDatabaseVersionFile(dataDir)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	closeDB = func() {
		log.Infof("Gracefully shutting down the database...")
		err := db.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
		err = lock.Unlock()
		if err != nil {
			log.Errorf("Failed to unlock %s: %s", dataDir, err)
		}
	}
	return db, closeDB, nil
}
