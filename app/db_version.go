package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const currentDatabaseVersion = 1

func checkDatabaseVersion(dbPath string) (doesVersionFileExist bool, err error) {
	versionBytes, err := os.ReadFile(versionFilePath(dbPath))
	if err != nil {
		if os.IsNotExist(err) { // A missing version file means a new database
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	databaseVersion, err := strconv.Atoi(strings.TrimSpace(string(versionBytes)))
	if err != nil {
		return true, errors.WithStack(err)
	}

	if databaseVersion != currentDatabaseVersion {
		return true, errors.Errorf("invalid database version %d. Expected version: %d",
			databaseVersion, currentDatabaseVersion)
	}

	return true, nil
}

func createDatabaseVersionFile(dbPath string) error {
	versionString := strconv.Itoa(currentDatabaseVersion)
	err := os.WriteFile(versionFilePath(dbPath), []byte(versionString), 0600)
	return errors.WithStack(err)
}

func versionFilePath(dbPath string) string {
	return filepath.Join(dbPath, "version")
}
