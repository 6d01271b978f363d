package logger

import (
	"io"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config defines options for New and Init. The zero value gives the
// defaults: level all, enabled, no timestamps, truncation at 100
// characters, plain (non-structured) output to stdout/stderr.
type Config struct {
	// Level is the initial level name (none, error, info, log, all).
	// Default: "" (all). Unknown names are ignored.
	Level string
	// Timestamps prefixes console lines with the time of day.
	// Default: false
	Timestamps bool
	// DisableTruncate keeps rendered content at full length.
	// Default: false (truncation on)
	DisableTruncate bool
	// MaxLength is the truncation threshold in characters.
	// Default: 100
	MaxLength int
	// TimeFormat is the time-of-day layout.
	// Default: "15:04:05"
	TimeFormat string
	// Structured emits machine-readable records instead of styled lines.
	// Default: false
	Structured bool
	// Colorize enables ANSI colour output on the console sink.
	// Default: false
	Colorize bool
	// SyslogPrefix adds journald priority prefixes to console lines.
	// Default: false
	SyslogPrefix bool
	// Stdout and Stderr override the console outputs.
	// Default: os.Stdout, os.Stderr
	Stdout io.Writer
	Stderr io.Writer
	// Sink replaces the console sink entirely.
	// Default: nil (console sink)
	Sink Sink
	// Registerer receives the logger's Prometheus collectors.
	// Default: nil (metrics are kept but not registered)
	Registerer prometheus.Registerer
	// Now overrides the clock.
	// Default: time.Now
	Now func() time.Time
}

// Mirror receives the raw arguments of every emitted log, error and info
// call once it has been activated through Logger.ActivateUI. The panel
// package provides the standard implementation. Implementations must not
// call back into the Logger.
type Mirror interface {
	Activate()
	Append(level Level, args []any)
	Clear()
}

// Logger is a leveled console logger with an optional UI mirror. All
// methods are safe for concurrent use and never panic on bad arguments.
type Logger struct {
	mu         sync.Mutex
	level      Level
	enabled    bool
	structured bool
	format     Formatter
	sink       Sink
	timers     *timerRegistry
	ui         Mirror
	metrics    *metrics
}

// Dependency injection points for testing outputs.
var (
	outStdout io.Writer = os.Stdout
	outStderr io.Writer = os.Stderr
)

// New returns a Logger configured by config.
func New(config Config) *Logger {
	sink := config.Sink
	if sink == nil {
		sink = NewConsoleSink(config.Stdout, config.Stderr, config.Colorize, config.SyslogPrefix)
	}
	l := &Logger{
		sink: sink,
		format: Formatter{
			MaxLength:  config.MaxLength,
			TimeFormat: config.TimeFormat,
			Now:        config.Now,
		},
		timers:  newTimerRegistry(),
		metrics: newMetrics(config.Registerer),
	}
	l.resetFlags()
	if level, ok := ParseLevel(config.Level); ok {
		l.level = level
	}
	l.format.Timestamps = config.Timestamps
	l.format.AutoTruncate = !config.DisableTruncate
	l.structured = config.Structured
	return l
}

func (l *Logger) resetFlags() {
	l.level = AllLevel
	l.enabled = true
	l.format.Timestamps = false
	l.format.AutoTruncate = true
	l.structured = false
}

func (l *Logger) gate(level Level) bool {
	return admits(l.enabled, l.level, level)
}

// ShouldLog reports whether a call at level would be emitted.
func (l *Logger) ShouldLog(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gate(level)
}

func (l *Logger) emit(level Level, label string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.gate(level) {
		l.metrics.suppressed.WithLabelValues(level.String()).Inc()
		return
	}
	l.metrics.emitted.WithLabelValues(level.String()).Inc()

	if l.structured {
		rec := l.format.BuildStructured(level, args)
		l.sink.Write(level, Record{Level: level, Label: label, Tag: rec.Tag, Structured: &rec})
		if l.ui != nil {
			l.ui.Append(level, []any{rec})
		}
		return
	}

	l.sink.Write(level, l.format.Format(level, label, args))
	if l.ui != nil {
		l.ui.Append(level, args)
	}
}

// Log logs at log level. A leading upper-case identifier such as "DB" or
// "HTTP_2" followed by more arguments becomes the line's tag.
func (l *Logger) Log(args ...any) {
	l.emit(LogLevel, "LOG", args)
}

// Error logs at error level, routed to stderr by the console sink.
func (l *Logger) Error(args ...any) {
	l.emit(ErrorLevel, "ERROR", args)
}

// Info logs at info level.
func (l *Logger) Info(args ...any) {
	l.emit(InfoLevel, "INFO", args)
}

// SetLevel sets the current level. Values outside the named levels are
// ignored.
func (l *Logger) SetLevel(level Level) {
	if !level.Valid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelName sets the current level by name. Unknown names are ignored.
func (l *Logger) SetLevelName(name string) {
	if level, ok := ParseLevel(name); ok {
		l.SetLevel(level)
	}
}

// SetDefaultLevel resets the level to all.
func (l *Logger) SetDefaultLevel() {
	l.SetLevel(AllLevel)
}

// Level returns the current level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enable turns output back on without touching the level.
func (l *Logger) Enable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = true
}

// Disable suppresses all output regardless of level.
func (l *Logger) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
}

// Enabled reports the master switch.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// SetTimestamps turns the time-of-day prefix on or off.
func (l *Logger) SetTimestamps(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format.Timestamps = on
}

// SetAutoTruncingOn caps rendered content at the configured length.
func (l *Logger) SetAutoTruncingOn() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format.AutoTruncate = true
}

// SetAutoTruncingOff keeps rendered content at full length.
func (l *Logger) SetAutoTruncingOff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format.AutoTruncate = false
}

// SetStructured switches between styled lines and structured records.
func (l *Logger) SetStructured(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.structured = on
}

// Group opens a console group. Like every output it is dropped while the
// logger is disabled.
func (l *Logger) Group(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return
	}
	if g, ok := l.sink.(Grouper); ok {
		g.Group(label)
	}
}

// GroupEnd closes the innermost console group.
func (l *Logger) GroupEnd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return
	}
	if g, ok := l.sink.(Grouper); ok {
		g.GroupEnd()
	}
}

// Clear clears the console and, when active, the UI entry list. A console
// that cannot be cleared is reported with an info line.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	notice := "console cleared"
	if c, ok := l.sink.(Clearer); ok {
		if err := c.Clear(); err != nil {
			notice = "console clear was blocked: " + err.Error()
		}
	}
	if l.enabled {
		l.sink.Write(InfoLevel, l.format.FormatTagged(InfoLevel, "INFO", "", []any{notice}))
	}
	if l.ui != nil {
		l.ui.Clear()
	}
}

// Reset restores the default level and flags. UI activation and pending
// timers survive a reset.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetFlags()
}

// ActivateUI attaches and activates m as the UI mirror. Activation is
// one-way: once a mirror is attached, later calls return it unchanged.
// A nil mirror, typed or not, is ignored.
func (l *Logger) ActivateUI(m Mirror) Mirror {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ui != nil || isNilMirror(m) {
		return l.ui
	}
	m.Activate()
	l.ui = m
	return m
}

func isNilMirror(m Mirror) bool {
	if m == nil {
		return true
	}
	rv := reflect.ValueOf(m)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// UI returns the active mirror, or nil.
func (l *Logger) UI() Mirror {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ui
}

// Settings is a snapshot of the mutable flags.
type Settings struct {
	Level        Level
	Enabled      bool
	Timestamps   bool
	AutoTruncate bool
	Structured   bool
	UIActive     bool
}

// Settings returns the current flags.
func (l *Logger) Settings() Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Settings{
		Level:        l.level,
		Enabled:      l.enabled,
		Timestamps:   l.format.Timestamps,
		AutoTruncate: l.format.AutoTruncate,
		Structured:   l.structured,
		UIActive:     l.ui != nil,
	}
}
