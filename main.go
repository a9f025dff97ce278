// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	_ "net/http/pprof"
	"os"
	"runtime"

	"github.com/Hoosat-Oy/flexidag/app"
)

func main() {
	if os.Getenv("FLEXIDAG_PROFILER") != "" {
		runtime.SetBlockProfileRate(1)     // Set block profile rate to 1 to enable block profiling
		runtime.SetMutexProfileFraction(1) // Set mutex profile fraction to 1 to enable mutex profiling
	}

	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
