package app

import (
	"os"
	"testing"

	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
)

func TestMain(m *testing.M) {
	logger.SetLogLevels(logger.LevelWarn)
	os.Exit(m.Run())
}
