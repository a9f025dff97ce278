// Copyright (c) 2024 Hoosat Oy
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("DAGC")
