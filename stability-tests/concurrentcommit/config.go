package concurrentcommit

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename    = "concurrent-commit.log"
	defaultErrLogFilename = "concurrent-commit_err.log"
)

var (
	defaultAppDir     = filepath.Join(os.TempDir(), "flexidag-stability-tests")
	defaultLogFile    = filepath.Join(defaultAppDir, defaultLogFilename)
	defaultErrLogFile = filepath.Join(defaultAppDir, defaultErrLogFilename)
)

type configFlags struct {
	Profile          string        `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	DBBackend        string        `long:"db-backend" description:"Database backend {leveldb, pebble}" default:"pebble"`
	K                uint16        `long:"ghostdag-k" description:"GHOSTDAG K parameter" default:"18"`
	Duration         time.Duration `long:"duration" description:"How long to commit blocks (e.g. 30s, 2m)" default:"30s"`
	ProgressInterval time.Duration `long:"progress-interval" description:"How often to print progress logs while running" default:"5s"`
	Workers          int           `long:"workers" description:"Number of concurrent committing goroutines" default:"16"`
	Duplicates       int           `long:"duplicates" description:"Number of goroutines committing each block" default:"2"`
	MaxParents       int           `long:"max-parents" description:"Maximum number of parents of a block" default:"6"`
	TotalBlocks      int           `long:"blocks" description:"Total blocks to commit (0 = run for --duration)" default:"0"`
	Checks           int           `long:"checks" description:"Number of random ancestry pairs verified after the run" default:"2000"`
}

var cfg *configFlags

func activeConfig() *configFlags {
	return cfg
}

func parseConfig() error {
	cfg = &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag|flags.IgnoreUnknown)
	_, err := parser.Parse()
	if err != nil {
		return err
	}

	err = os.MkdirAll(defaultAppDir, 0700)
	if err != nil {
		return err
	}
	initLog(defaultLogFile, defaultErrLogFile)
	return nil
}
