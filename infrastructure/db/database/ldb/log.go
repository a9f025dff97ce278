package ldb

import "github.com/Hoosat-Oy/flexidag/infrastructure/logger"

var log = logger.RegisterSubSystem("LVDB")
