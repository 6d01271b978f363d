package logger

import (
	"strconv"
	"strings"
	"time"
)

// timerRegistry maps timer ids to their start instants. There is at most
// one pending start per id; ending an id consumes it.
type timerRegistry struct {
	starts map[string]time.Time
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{starts: make(map[string]time.Time)}
}

func (r *timerRegistry) start(id string, at time.Time) {
	r.starts[id] = at
}

func (r *timerRegistry) end(id string) (time.Time, bool) {
	at, ok := r.starts[id]
	if ok {
		delete(r.starts, id)
	}
	return at, ok
}

func (r *timerRegistry) pending() int {
	return len(r.starts)
}

func timerName(id string, label []string) string {
	if len(label) > 0 && label[0] != "" {
		return strings.ToUpper(label[0])
	}
	return strings.ToUpper(id)
}

// TimeStart records the current instant under id and prints a "started"
// line at log level. An optional label replaces id in the output.
// Starting an id that is already pending restarts it.
func (l *Logger) TimeStart(id string, label ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.format.now()
	l.timers.start(id, now)
	if !l.gate(LogLevel) {
		return
	}
	l.sink.Write(LogLevel, l.format.FormatTagged(LogLevel, "TIME", timerName(id, label),
		[]any{"Started at: " + l.format.Clock(now)}))
}

// TimeEnd prints the time elapsed since TimeStart(id) in seconds and
// forgets the timer. A missing start is reported at error level and
// leaves the registry untouched.
func (l *Logger) TimeEnd(id string, label ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	end := l.format.now()
	name := timerName(id, label)
	start, ok := l.timers.end(id)
	if !ok {
		l.metrics.missing.Inc()
		if l.gate(ErrorLevel) {
			l.sink.Write(ErrorLevel, l.format.FormatTagged(ErrorLevel, "ERROR", name,
				[]any{"No start time found for this label. Did you call TimeStart()?"}))
		}
		return
	}

	elapsed := end.Sub(start)
	l.metrics.timers.Observe(elapsed.Seconds())
	if !l.gate(LogLevel) {
		return
	}
	l.sink.Write(LogLevel, l.format.FormatTagged(LogLevel, "TIME", name,
		[]any{"Ended at: " + l.format.Clock(end) + " (+" + FormatElapsed(elapsed) + ")"}))
}

// FormatElapsed renders d as seconds with two decimals, e.g. "1.25s".
func FormatElapsed(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
}

// PendingTimers returns the number of started, not yet ended timers.
func (l *Logger) PendingTimers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timers.pending()
}
