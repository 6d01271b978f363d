package logger

import "strings"

// Level is the verbosity tier of a Logger. A call at level L is emitted
// only while the logger is enabled and L <= the current level.
type Level int

const (
	// NoneLevel suppresses every call.
	NoneLevel Level = iota
	// ErrorLevel admits error calls only.
	ErrorLevel
	// InfoLevel admits error and info calls.
	InfoLevel
	// LogLevel admits error, info and log calls.
	LogLevel
	// AllLevel admits everything. It is the default.
	AllLevel
)

// AllLevels returns every named level in order.
func AllLevels() []Level {
	return []Level{NoneLevel, ErrorLevel, InfoLevel, LogLevel, AllLevel}
}

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case NoneLevel:
		return "none"
	case ErrorLevel:
		return "error"
	case InfoLevel:
		return "info"
	case LogLevel:
		return "log"
	case AllLevel:
		return "all"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the named levels.
func (l Level) Valid() bool {
	return l >= NoneLevel && l <= AllLevel
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return NoneLevel, true
	case "error":
		return ErrorLevel, true
	case "info":
		return InfoLevel, true
	case "log":
		return LogLevel, true
	case "all":
		return AllLevel, true
	}
	return AllLevel, false
}

// admits is the level gate. It has no side effects.
func admits(enabled bool, current, level Level) bool {
	return enabled && level <= current
}
