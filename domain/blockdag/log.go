package blockdag

import (
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
