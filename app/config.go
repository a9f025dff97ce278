package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/dagconfig"
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultLogFilename    = "flexidag.log"
	defaultErrLogFilename = "flexidag_err.log"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"
	defaultNetwork        = "flexidag-devnet"

	backendLevelDB = "leveldb"
	backendPebble  = "pebble"
)

// DefaultAppDir is the default home directory of flexidag
var DefaultAppDir = defaultAppDir()

func defaultAppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flexidag"
	}
	return filepath.Join(homeDir, ".flexidag")
}

// Flags defines the configuration options of flexidag.
type Flags struct {
	AppDir       string `short:"b" long:"appdir" description:"Directory to store data and logs"`
	LogDir       string `long:"logdir" description:"Directory to log output"`
	LogLevel     string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	Network      string `long:"network" description:"Network parameters to use {flexidag-mainnet, flexidag-devnet, flexidag-simnet}"`
	DBBackend    string `long:"db-backend" description:"Database backend {leveldb, pebble}" default:"leveldb"`
	DBCacheMiB   int    `long:"db-cache" description:"Database cache size in MiB" default:"64"`
	K            uint16 `short:"k" long:"ghostdag-k" description:"Override the GHOSTDAG K parameter of the network (0 keeps the network default)"`
	Blocks       int    `long:"blocks" description:"Number of blocks to generate on top of the current tips" default:"1000"`
	Width        int    `long:"width" description:"Number of blocks generated per DAG layer" default:"4"`
	MaxParents   int    `long:"max-parents" description:"Maximum number of parents of a generated block" default:"4"`
	Workers      int    `long:"workers" description:"Number of goroutines committing blocks concurrently" default:"4"`
	Seed         int64  `long:"seed" description:"Seed of the block generator (0 picks a random seed)"`
	Profile      string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	ResetDB      bool   `long:"reset-db" description:"Reset the database before starting"`
	ShowSettings bool   `long:"show-settings" description:"Print the network parameters and exit"`
}

// Config holds the parsed flags and the network parameters they select
type Config struct {
	*Flags
	Params *dagconfig.Params
}

func defaultFlags() *Flags {
	return &Flags{
		AppDir:   DefaultAppDir,
		LogLevel: defaultLogLevel,
		Network:  defaultNetwork,
	}
}

// LoadConfig parses args into a Config and validates it
func LoadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()
	parser := flags.NewParser(cfgFlags, flags.HelpFlag)
	_, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}
	err = cfg.resolve()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) resolve() error {
	cfg.AppDir = cleanAndExpandPath(cfg.AppDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	cfg.DBBackend = strings.ToLower(cfg.DBBackend)
	if cfg.DBBackend != backendLevelDB && cfg.DBBackend != backendPebble {
		return errors.Errorf("--db-backend: unknown backend %q", cfg.DBBackend)
	}
	if cfg.DBCacheMiB <= 0 {
		return errors.New("--db-cache must be positive")
	}
	if cfg.Blocks < 0 {
		return errors.New("--blocks must not be negative")
	}
	if cfg.Width <= 0 {
		return errors.New("--width must be positive")
	}
	if cfg.MaxParents <= 0 {
		return errors.New("--max-parents must be positive")
	}
	if cfg.Workers <= 0 {
		return errors.New("--workers must be positive")
	}

	_, ok := logger.LevelFromString(cfg.LogLevel)
	if !ok && !strings.Contains(cfg.LogLevel, "=") {
		return errors.Errorf("--loglevel: invalid level %q", cfg.LogLevel)
	}

	params, err := dagconfig.ParamsByName(cfg.Network)
	if err != nil {
		return err
	}
	if cfg.K != 0 {
		params = params.WithK(externalapi.KType(cfg.K))
	}
	err = params.Validate()
	if err != nil {
		return err
	}
	cfg.Params = params
	return nil
}

// DataDir returns the directory of the database of the configured network
func (cfg *Config) DataDir() string {
	return filepath.Join(cfg.AppDir, cfg.Params.Name, defaultDataDirname, cfg.DBBackend)
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, cfg.Params.Name, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, cfg.Params.Name, defaultErrLogFilename)
}

// cleanAndExpandPath expands a leading ~ and environment variables
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
