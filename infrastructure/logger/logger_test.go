package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type bufferCloser struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bufferCloser) Close() error { return nil }

func (b *bufferCloser) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"nonsense", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Fatalf("LevelFromString(%s): expected (%s, %t), got (%s, %t)",
				test.input, test.expected, test.ok, level, ok)
		}
	}
}

func TestBackendFiltersByLevel(t *testing.T) {
	backend := NewBackendWithFlags(0)
	writer := &bufferCloser{}
	err := backend.AddLogWriter(writer, LevelInfo)
	if err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Debugf("hidden by the writer level")
	log.Infof("visible %d", 42)
	backend.Close()

	deadline := time.Now().Add(time.Second)
	for !strings.Contains(writer.String(), "visible 42") {
		if time.Now().After(deadline) {
			t.Fatalf("expected info message in output, got: %q", writer.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if strings.Contains(writer.String(), "hidden") {
		t.Fatalf("debug message leaked to an info writer: %q", writer.String())
	}
	if !strings.Contains(writer.String(), "[INF] TEST: ") {
		t.Fatalf("unexpected header format: %q", writer.String())
	}
}

func TestParseAndSetLogLevels(t *testing.T) {
	log := RegisterSubSystem("TLOG")
	err := ParseAndSetLogLevels("TLOG=debug")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %s", err)
	}
	if log.Level() != LevelDebug {
		t.Fatalf("expected debug level, got %s", log.Level())
	}
	err = ParseAndSetLogLevels("NOPE=debug")
	if err == nil {
		t.Fatalf("expected an error for an unknown subsystem")
	}
	err = ParseAndSetLogLevels("loud")
	if err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestBackendCloseIsIdempotent(t *testing.T) {
	backend := NewBackendWithFlags(0)
	writer := &bufferCloser{}
	err := backend.AddLogWriter(writer, LevelTrace)
	if err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	err = backend.AddLogWriter(&bufferCloser{}, LevelTrace)
	if err == nil {
		t.Fatalf("expected an error adding a writer to a running backend")
	}

	log := backend.Logger("CLSE")
	log.SetLevel(LevelTrace)
	log.Infof("before close")
	backend.Close()
	backend.Close()
	log.Infof("after close")

	if backend.IsRunning() {
		t.Fatalf("backend is still running after Close")
	}
	if !strings.Contains(writer.String(), "before close") {
		t.Fatalf("Close did not flush pending entries: %q", writer.String())
	}
	if strings.Contains(writer.String(), "after close") {
		t.Fatalf("entry written after Close: %q", writer.String())
	}
}

func TestFlagsFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected uint32
	}{
		{"", 0},
		{"shortfile", LogFlagShortFile},
		{"longfile, shortfile", LogFlagLongFile | LogFlagShortFile},
		{"verbose", 0},
	}
	for _, test := range tests {
		flags := flagsFromEnv(test.value)
		if flags != test.expected {
			t.Fatalf("flagsFromEnv(%q): expected %d, got %d", test.value, test.expected, flags)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WRN" {
		t.Fatalf("expected WRN, got %s", LevelWarn)
	}
	if Level(42).String() != "OFF" {
		t.Fatalf("expected OFF for an out of range level, got %s", Level(42))
	}
}
