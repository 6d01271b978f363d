package logger

import "sync/atomic"

var std atomic.Pointer[Logger]

func init() {
	std.Store(New(Config{}))
}

// Init replaces the default logger with one built from config.
func Init(config Config) {
	std.Store(New(config))
}

// SetDefault replaces the default logger instance. Nil is ignored.
func SetDefault(l *Logger) {
	if l != nil {
		std.Store(l)
	}
}

// Default returns the logger behind the package-level functions.
func Default() *Logger {
	return std.Load()
}

// Log logs at log level using the default logger.
func Log(args ...any) { Default().Log(args...) }

// Error logs at error level using the default logger.
func Error(args ...any) { Default().Error(args...) }

// Info logs at info level using the default logger.
func Info(args ...any) { Default().Info(args...) }

// SetLevel sets the level of the default logger.
func SetLevel(level Level) { Default().SetLevel(level) }

// SetLevelName sets the level of the default logger by name.
func SetLevelName(name string) { Default().SetLevelName(name) }

// SetDefaultLevel resets the default logger's level to all.
func SetDefaultLevel() { Default().SetDefaultLevel() }

// Enable turns the default logger on.
func Enable() { Default().Enable() }

// Disable silences the default logger.
func Disable() { Default().Disable() }

// SetTimestamps toggles timestamps on the default logger.
func SetTimestamps(on bool) { Default().SetTimestamps(on) }

// SetAutoTruncingOn enables truncation on the default logger.
func SetAutoTruncingOn() { Default().SetAutoTruncingOn() }

// SetAutoTruncingOff disables truncation on the default logger.
func SetAutoTruncingOff() { Default().SetAutoTruncingOff() }

// SetStructured toggles structured output on the default logger.
func SetStructured(on bool) { Default().SetStructured(on) }

// Group opens a console group on the default logger.
func Group(label string) { Default().Group(label) }

// GroupEnd closes the innermost group on the default logger.
func GroupEnd() { Default().GroupEnd() }

// Clear clears the default logger's console and UI.
func Clear() { Default().Clear() }

// Reset restores the default logger's flags.
func Reset() { Default().Reset() }

// TimeStart starts a named timer on the default logger.
func TimeStart(id string, label ...string) { Default().TimeStart(id, label...) }

// TimeEnd ends a named timer on the default logger.
func TimeEnd(id string, label ...string) { Default().TimeEnd(id, label...) }

// ActivateUI attaches m to the default logger.
func ActivateUI(m Mirror) Mirror { return Default().ActivateUI(m) }
