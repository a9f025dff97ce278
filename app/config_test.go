package app

import (
	"path/filepath"
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/dagconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	appDir := t.TempDir()
	cfg, err := LoadConfig([]string{"--appdir", appDir})
	if err != nil {
		t.Fatalf("LoadConfig: %+v", err)
	}
	if cfg.DBBackend != backendLevelDB {
		t.Fatalf("unexpected backend %s", cfg.DBBackend)
	}
	if cfg.Params.Name != defaultNetwork {
		t.Fatalf("unexpected network %s", cfg.Params.Name)
	}
	if cfg.Params.K != dagconfig.DevnetParams.K {
		t.Fatalf("unexpected K %d", cfg.Params.K)
	}
	if cfg.Blocks != 1000 || cfg.Width != 4 || cfg.Workers != 4 {
		t.Fatalf("unexpected generator defaults: %d blocks, width %d, %d workers",
			cfg.Blocks, cfg.Width, cfg.Workers)
	}
	expectedDataDir := filepath.Join(appDir, defaultNetwork, defaultDataDirname, backendLevelDB)
	if cfg.DataDir() != expectedDataDir {
		t.Fatalf("unexpected data dir %s, expected %s", cfg.DataDir(), expectedDataDir)
	}
	if cfg.LogFile() != filepath.Join(appDir, defaultLogDirname, defaultNetwork, defaultLogFilename) {
		t.Fatalf("unexpected log file %s", cfg.LogFile())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig([]string{"--appdir", t.TempDir(), "--db-backend", "Pebble",
		"--network", dagconfig.SimnetParams.Name, "-k", "3", "--blocks", "0"})
	if err != nil {
		t.Fatalf("LoadConfig: %+v", err)
	}
	if cfg.DBBackend != backendPebble {
		t.Fatalf("unexpected backend %s", cfg.DBBackend)
	}
	if cfg.Params.K != 3 {
		t.Fatalf("unexpected K %d", cfg.Params.K)
	}
	if dagconfig.SimnetParams.K == 3 {
		t.Fatalf("the K override must not change the network defaults")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown backend", args: []string{"--db-backend", "bolt"}},
		{name: "unknown network", args: []string{"--network", "nonet"}},
		{name: "zero width", args: []string{"--width", "0"}},
		{name: "zero workers", args: []string{"--workers", "0"}},
		{name: "zero max parents", args: []string{"--max-parents", "0"}},
		{name: "negative blocks", args: []string{"--blocks=-1"}},
		{name: "invalid log level", args: []string{"--loglevel", "loud"}},
		{name: "unknown flag", args: []string{"--no-such-flag"}},
	}
	for _, test := range tests {
		args := append([]string{"--appdir", t.TempDir()}, test.args...)
		_, err := LoadConfig(args)
		if err == nil {
			t.Fatalf("%s: expected an error", test.name)
		}
	}
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := LoadConfig([]string{"--help"})
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
		t.Fatalf("expected a help error, got %v", err)
	}
}
