package concurrentcommit

import (
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("STBT")

func initLog(logFile, errLogFile string) {
	logger.InitLog(logFile, errLogFile)
	log.SetLevel(logger.LevelInfo)
}
