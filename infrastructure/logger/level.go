package logger

import "strings"

// Level is the minimum severity a logger or writer lets through.
type Level uint32

// Severities in increasing order. LevelOff silences everything.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelNames holds the three-letter tag printed in log headers and the
// long name accepted in configuration, indexed by Level.
var levelNames = [...]struct{ tag, long string }{
	LevelTrace:    {"TRC", "trace"},
	LevelDebug:    {"DBG", "debug"},
	LevelInfo:     {"INF", "info"},
	LevelWarn:     {"WRN", "warn"},
	LevelError:    {"ERR", "error"},
	LevelCritical: {"CRT", "critical"},
	LevelOff:      {"OFF", "off"},
}

// LevelFromString parses either the long name or the header tag of a level,
// ignoring case. Unknown input yields LevelInfo and false.
func LevelFromString(s string) (Level, bool) {
	for level, names := range levelNames {
		if strings.EqualFold(s, names.long) || strings.EqualFold(s, names.tag) {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// String returns the header tag of l. Anything above LevelCritical is "OFF".
func (l Level) String() string {
	if l >= LevelOff {
		return levelNames[LevelOff].tag
	}
	return levelNames[l].tag
}
