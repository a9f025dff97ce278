package app

import (
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
	"github.com/Hoosat-Oy/flexidag/util/panics"
)

var log = logger.RegisterSubSystem("FXDG")
var spawn = panics.GoroutineWrapperFunc(log)
