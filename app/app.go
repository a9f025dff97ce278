package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hoosat-Oy/flexidag/domain/blockdag"
	consensusdatabase "github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
	"github.com/Hoosat-Oy/flexidag/util/panics"
	"github.com/Hoosat-Oy/flexidag/util/profiling"
	"github.com/davecgh/go-spew/spew"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// StartApp parses the command line, opens the database and grows the DAG
// by the configured number of blocks.
func StartApp() error {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	if cfg.ShowSettings {
		fmt.Println(spew.Sdump(cfg.Params))
		return nil
	}

	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		log.Errorf("%s", err)
		return err
	}

	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = run(ctx, cfg)
	if err != nil {
		log.Criticalf("%+v", err)
		return err
	}
	return nil
}

func run(ctx context.Context, cfg *Config) error {
	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	dag, err := blockdag.New(consensusdatabase.New(db), cfg.Params)
	if err != nil {
		return err
	}
	err = dag.InitWithGenesis(cfg.Params.GenesisHeader())
	if err != nil {
		return err
	}

	if cfg.Blocks == 0 {
		return logDAGState(dag)
	}

	generator, err := newGenerator(dag, cfg)
	if err != nil {
		return err
	}
	result, err := generator.generate(ctx, cfg.Blocks)
	if err != nil {
		return err
	}
	log.Infof("Committed %d blocks. Selected tip %s with blue score %d and blue work %s",
		result.Blocks, result.SelectedTip, result.BlueScore, result.BlueWork)
	return logDAGState(dag)
}

func logDAGState(dag *blockdag.BlockDAG) error {
	tips, err := dag.Tips()
	if err != nil {
		return err
	}
	reindexRoot, err := dag.ReindexRoot()
	if err != nil {
		return err
	}
	log.Infof("The DAG has %d tips, reindex root %s", len(tips), reindexRoot)
	log.Debugf("Tips: %s", tips)
	return nil
}
