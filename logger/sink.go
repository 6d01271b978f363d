package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ErrClearUnsupported is returned by ConsoleSink.Clear when the output is
// not a terminal that understands the clear sequence.
var ErrClearUnsupported = errors.New("console clear is not supported by this output")

// Sink receives records that already passed the level gate.
type Sink interface {
	Write(level Level, rec Record)
}

// Grouper is implemented by sinks that support nested groups.
type Grouper interface {
	Group(label string)
	GroupEnd()
}

// Clearer is implemented by sinks that can be cleared.
type Clearer interface {
	Clear() error
}

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[37m"

	clearSequence = "\033[H\033[2J"
	groupIndent   = "  "
)

var labelColors = map[string]string{
	"LOG":        "\033[36m",
	"ERROR":      "\033[31m",
	"INFO":       "\033[32m",
	"TIME":       "\033[33m",
	"GROUP":      "\033[34m",
	"STRUCTURED": "\033[35m",
}

// ConsoleSink writes records to stdout (log, info) and stderr (error).
// It is safe for concurrent use.
type ConsoleSink struct {
	mu           sync.Mutex
	stdout       io.Writer
	stderr       io.Writer
	colorize     bool
	syslogPrefix bool
	depth        int
}

// NewConsoleSink returns a console sink. Nil writers fall back to the
// process stdout and stderr.
func NewConsoleSink(stdout, stderr io.Writer, colorize, syslogPrefix bool) *ConsoleSink {
	if stdout == nil {
		stdout = outStdout
	}
	if stderr == nil {
		stderr = outStderr
	}
	return &ConsoleSink{
		stdout:       stdout,
		stderr:       stderr,
		colorize:     colorize,
		syslogPrefix: syslogPrefix,
	}
}

// Write renders rec as one line (more when the body spans lines).
func (c *ConsoleSink) Write(level Level, rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLine(level, c.render(rec))
}

func (c *ConsoleSink) render(rec Record) string {
	if rec.Structured != nil {
		return c.paint("STRUCTURED", "[STRUCTURED]", rec.Structured.JSON())
	}
	return c.paint(rec.Label, rec.Prefix(), rec.Body())
}

// paint styles a line the way a browser console renders "%c" pairs: a
// bold coloured prefix followed by a dim body.
func (c *ConsoleSink) paint(label, prefix, body string) string {
	if !c.colorize {
		if body == "" {
			return prefix
		}
		return prefix + " " + body
	}
	color, ok := labelColors[label]
	if !ok {
		color = ansiDim
	}
	line := ansiBold + color + prefix + ansiReset
	if body != "" {
		line += " " + ansiDim + body + ansiReset
	}
	return line
}

func (c *ConsoleSink) writeLine(level Level, line string) {
	out := c.stdout
	if level == ErrorLevel {
		out = c.stderr
	}
	prefix := strings.Repeat(groupIndent, c.depth)
	if c.syslogPrefix {
		prefix = syslogPrefixForLevel(level) + prefix
	}
	if prefix != "" {
		out = &linePrefixWriter{w: out, prefix: prefix}
	}
	_, _ = io.WriteString(out, line+"\n")
}

// Group opens a nested group and prints its header.
func (c *ConsoleSink) Group(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLine(LogLevel, c.paint("GROUP", "[GROUP]", label))
	c.depth++
}

// GroupEnd closes the innermost group. It is a no-op with no open group.
func (c *ConsoleSink) GroupEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

// Clear clears the terminal behind stdout. It returns ErrClearUnsupported
// when stdout is not a terminal.
func (c *ConsoleSink) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth = 0
	f, ok := c.stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ErrClearUnsupported
	}
	if _, err := io.WriteString(f, clearSequence); err != nil {
		return errors.Wrap(err, "write clear sequence")
	}
	return nil
}

func syslogPrefixForLevel(level Level) string {
	switch level {
	case ErrorLevel:
		return "<3>"
	case InfoLevel:
		return "<6>"
	case LogLevel, AllLevel:
		return "<7>"
	default:
		return ""
	}
}

// linePrefixWriter prepends prefix to every line of each write.
type linePrefixWriter struct {
	w      io.Writer
	prefix string
}

func (s *linePrefixWriter) Write(data []byte) (int, error) {
	if s.prefix == "" {
		return s.w.Write(data)
	}
	if len(data) == 0 {
		return 0, nil
	}
	buf := make([]byte, 0, len(data)+len(s.prefix))
	buf = append(buf, s.prefix...)
	for i, b := range data {
		buf = append(buf, b)
		if b == '\n' && i != len(data)-1 {
			buf = append(buf, s.prefix...)
		}
	}
	if _, err := s.w.Write(buf); err != nil {
		return 0, err
	}
	return len(data), nil
}

// MemoryEntry is one record captured by a MemorySink.
type MemoryEntry struct {
	Level  Level
	Record Record
}

// MemorySink keeps records in memory. It is meant for tests and for hosts
// that render records themselves.
type MemorySink struct {
	mu      sync.Mutex
	entries []MemoryEntry
	groups  []string
	depth   int
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write captures rec.
func (m *MemorySink) Write(level Level, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, MemoryEntry{Level: level, Record: rec})
}

// Entries returns a copy of the captured records.
func (m *MemorySink) Entries() []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Lines returns the unstyled text of every captured record.
func (m *MemorySink) Lines() []string {
	entries := m.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Record.Text())
	}
	return lines
}

// Count returns the number of captured records at level.
func (m *MemorySink) Count(level Level) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Group records label and opens a group.
func (m *MemorySink) Group(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, label)
	m.depth++
}

// GroupEnd closes the innermost group, if any.
func (m *MemorySink) GroupEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth > 0 {
		m.depth--
	}
}

// Depth returns the number of open groups.
func (m *MemorySink) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth
}

// Groups returns every group label opened so far.
func (m *MemorySink) Groups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.groups...)
}

// Clear drops every captured record.
func (m *MemorySink) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.depth = 0
	return nil
}
