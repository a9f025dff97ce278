package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const normalLogSize = 512

// Callsite flags. LogFlagShortFile wins when both are set.
const (
	LogFlagLongFile uint32 = 1 << iota
	LogFlagShortFile
)

var flagNames = map[string]uint32{
	"longfile":  LogFlagLongFile,
	"shortfile": LogFlagShortFile,
}

// defaultFlags is read once from the comma separated LOGFLAGS variable.
var defaultFlags = flagsFromEnv(os.Getenv("LOGFLAGS"))

func flagsFromEnv(value string) uint32 {
	var flags uint32
	for _, name := range strings.Split(value, ",") {
		flags |= flagNames[strings.TrimSpace(name)]
	}
	return flags
}

// Rotation defaults for AddLogFile.
const (
	defaultThresholdKB = 100 * 1000
	defaultMaxRolls    = 8
)

// sink is a destination that receives every entry at or above its level.
type sink struct {
	io.WriteCloser
	level Level
}

// Backend serializes the output of all subsystem loggers onto a set of
// sinks. Sinks are registered before Run; entries submitted before Run or
// after Close are dropped.
type Backend struct {
	flag    uint32
	running atomic.Bool
	sinks   []sink
	entries chan logEntry
	drained chan struct{}

	// closeLock is held for reading while an entry is handed over, so that
	// Close never closes entries under a pending send.
	closeLock sync.RWMutex
	closed    bool
}

// NewBackendWithFlags returns a backend using the given callsite flags
// instead of the ones taken from LOGFLAGS.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{
		flag:    flags,
		entries: make(chan logEntry),
		drained: make(chan struct{}),
	}
}

// NewBackend returns a backend configured from LOGFLAGS.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

func (b *Backend) addSink(writer io.WriteCloser, level Level) error {
	if b.IsRunning() {
		return errors.New("cannot add a log writer to a running backend")
	}
	b.sinks = append(b.sinks, sink{WriteCloser: writer, level: level})
	return nil
}

// AddLogWriter registers writer for entries at logLevel and above.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	return b.addSink(writer, logLevel)
}

// AddLogFile registers a rotated log file with the default rotation
// settings. The file and its directory are created when missing.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator registers a log file that is rolled over once
// it passes thresholdKB, keeping at most maxRolls old files.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.New("cannot add a log file to a running backend")
	}
	if dir := filepath.Dir(logFile); dir != "." {
		err := os.MkdirAll(dir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", dir)
		}
	}
	fileRotator, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create a rotator for %s", logFile)
	}
	return b.addSink(fileRotator, logLevel)
}

// Run starts delivering entries to the sinks. It may be called once.
func (b *Backend) Run() error {
	if !b.running.CompareAndSwap(false, true) {
		return errors.New("the logger backend is already running")
	}
	go b.drain()
	return nil
}

func (b *Backend) drain() {
	defer close(b.drained)
	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Fatal error in the logger backend: %+v\n%s\n", err, debug.Stack())
		}
	}()
	for entry := range b.entries {
		for _, s := range b.sinks {
			if entry.level >= s.level {
				_, _ = s.Write(entry.log)
			}
		}
	}
}

// submit hands entry to the drain goroutine. It blocks until the entry is
// taken, which keeps per-logger ordering intact.
func (b *Backend) submit(entry logEntry) {
	b.closeLock.RLock()
	defer b.closeLock.RUnlock()
	if b.closed || !b.IsRunning() {
		return
	}
	b.entries <- entry
}

// IsRunning reports whether Run was called and Close was not.
func (b *Backend) IsRunning() bool {
	return b.running.Load()
}

// Close flushes pending entries and closes every sink. Later calls are
// no-ops.
func (b *Backend) Close() {
	b.closeLock.Lock()
	if b.closed {
		b.closeLock.Unlock()
		return
	}
	b.closed = true
	wasRunning := b.running.Swap(false)
	close(b.entries)
	b.closeLock.Unlock()

	if wasRunning {
		<-b.drained
	}
	for _, s := range b.sinks {
		_ = s.Close()
	}
}

// Logger returns a logger tagged with subsystemTag that writes through b.
// It stays silent until its level is set.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{lvl: LevelOff, tag: subsystemTag, b: b}
}
