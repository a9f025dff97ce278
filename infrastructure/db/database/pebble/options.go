package pebble

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/bloom"
	"github.com/cockroachdb/pebble/v2/sstable"
)

// tuning holds the knobs of the DAG store. The workload is point lookups by
// block hash plus one batched commit per block, so the defaults favour
// strong bloom filters and a shallow L0.
type tuning struct {
	cacheMiB                  int
	bloomBitsPerKey           int
	memTableMiB               int
	memTableStopThreshold     int
	baseFileMiB               int
	l0CompactionThreshold     int
	l0StopWritesThreshold     int
	l0CompactionFileThreshold int
	l0CompactionConcurrency   int
	compactionDebtGiB         int
	readCompactionRateKiB     int
	readSamplingMultiplier    int
	eventsMinMillis           int
	disableFlushSplit         bool
	logEvents                 bool
}

// Default base file size is a quarter of the memtable, clamped to this range.
const (
	minBaseFileMiB = 16
	maxBaseFileMiB = 256
)

func defaultTuning(cacheSizeMiB int) tuning {
	t := tuning{
		cacheMiB:                  512,
		bloomBitsPerKey:           16,
		memTableMiB:               64,
		memTableStopThreshold:     8,
		l0CompactionThreshold:     6,
		l0StopWritesThreshold:     32,
		l0CompactionFileThreshold: 8,
		l0CompactionConcurrency:   2,
		compactionDebtGiB:         2,
		eventsMinMillis:           250,
	}
	if cacheSizeMiB > 0 {
		t.cacheMiB = cacheSizeMiB
	}
	return t
}

// applyEnv overrides t from FLEXIDAG_* variables looked up through getenv.
// Unparsable and non-positive numbers are ignored. The base file size is
// derived after the memtable size so that it follows an overridden memtable.
func (t *tuning) applyEnv(getenv func(string) string) {
	positive := []struct {
		name   string
		target *int
	}{
		{"FLEXIDAG_PEBBLE_CACHE_MB", &t.cacheMiB},
		{"FLEXIDAG_BLOOM_FILTER_LEVEL", &t.bloomBitsPerKey},
		{"FLEXIDAG_MEMTABLE_SIZE_MB", &t.memTableMiB},
		{"FLEXIDAG_MEMTABLE_STOP_THRESHOLD", &t.memTableStopThreshold},
		{"FLEXIDAG_BASE_FILE_SIZE_MB", &t.baseFileMiB},
		{"FLEXIDAG_L0_COMPACTION_THRESHOLD", &t.l0CompactionThreshold},
		{"FLEXIDAG_L0_STOP_WRITES_THRESHOLD", &t.l0StopWritesThreshold},
		{"FLEXIDAG_L0_COMPACTION_FILE_THRESHOLD", &t.l0CompactionFileThreshold},
		{"FLEXIDAG_L0_COMPACTION_CONCURRENCY", &t.l0CompactionConcurrency},
		{"FLEXIDAG_COMPACTION_DEBT_CONCURRENCY_GB", &t.compactionDebtGiB},
		{"FLEXIDAG_READ_COMPACTION_RATE_KB", &t.readCompactionRateKiB},
		{"FLEXIDAG_PEBBLE_LOG_EVENTS_MIN_MS", &t.eventsMinMillis},
	}
	for _, knob := range positive {
		n, err := strconv.Atoi(getenv(knob.name))
		if err == nil && n > 0 {
			*knob.target = n
		}
	}
	if n, err := strconv.Atoi(getenv("FLEXIDAG_READ_SAMPLING_MULTIPLIER")); err == nil {
		t.readSamplingMultiplier = n
	}
	t.disableFlushSplit = envBool(getenv("FLEXIDAG_PEBBLE_DISABLE_FLUSH_SPLIT"))
	t.logEvents = envBool(getenv("FLEXIDAG_PEBBLE_LOG_EVENTS"))

	if t.baseFileMiB == 0 {
		t.baseFileMiB = min(max(t.memTableMiB/4, minBaseFileMiB), maxBaseFileMiB)
	}
}

func envBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// Options returns the pebble options of the DAG store for the given block
// cache size, adjusted by the FLEXIDAG_* environment variables. A
// non-positive cacheSizeMiB selects the 512 MiB default.
func Options(cacheSizeMiB int) *pebble.Options {
	t := defaultTuning(cacheSizeMiB)
	t.applyEnv(os.Getenv)
	return t.options()
}

func (t tuning) options() *pebble.Options {
	baseFileSize := int64(t.baseFileMiB) << 20
	opts := &pebble.Options{
		FormatMajorVersion:          pebble.FormatNewest,
		Cache:                       pebble.NewCache(int64(t.cacheMiB) << 20),
		MemTableSize:                uint64(t.memTableMiB) << 20,
		MemTableStopWritesThreshold: t.memTableStopThreshold,
		FlushSplitBytes:             baseFileSize,
		L0CompactionThreshold:       t.l0CompactionThreshold,
		L0StopWritesThreshold:       t.l0StopWritesThreshold,
		L0CompactionFileThreshold:   t.l0CompactionFileThreshold,
		MaxManifestFileSize:         128 << 20,
		MaxOpenFiles:                16384,
		WALBytesPerSync:             512 << 10,
		BytesPerSync:                1 << 20,
		CompactionConcurrencyRange:  func() (int, int) { return 2, 4 },
	}
	if t.disableFlushSplit {
		opts.FlushSplitBytes = 0
	}

	// Every level doubles the file size of the one above it. The bottom
	// level holds cold data and trades CPU for a better ratio.
	filter := bloom.FilterPolicy(t.bloomBitsPerKey)
	for level := range opts.Levels {
		opts.TargetFileSizes[level] = baseFileSize << level
		compression := sstable.SnappyCompression
		if level == len(opts.Levels)-1 {
			compression = sstable.ZstdCompression
		}
		opts.Levels[level] = pebble.LevelOptions{
			BlockSize:      8 << 10,
			IndexBlockSize: 4 << 10,
			Compression:    func() *sstable.CompressionProfile { return compression },
			FilterPolicy:   filter,
		}
	}

	opts.Experimental.L0CompactionConcurrency = t.l0CompactionConcurrency
	opts.Experimental.CompactionDebtConcurrency = uint64(t.compactionDebtGiB) << 30
	if t.readCompactionRateKiB > 0 {
		opts.Experimental.ReadCompactionRate = int64(t.readCompactionRateKiB) << 10
	}
	if t.readSamplingMultiplier != 0 {
		opts.Experimental.ReadSamplingMultiplier = int64(t.readSamplingMultiplier)
	}

	if t.logEvents {
		opts.Logger = pebbleLoggerAdapter{}
		opts.EventListener = eventListener(time.Duration(t.eventsMinMillis) * time.Millisecond)
	}

	opts.EnsureDefaults()
	return opts
}
