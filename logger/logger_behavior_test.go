package logger

import (
	"bytes"
	"strings"
	"testing"
)

// fakeMirror records what the logger forwards to the UI.
type fakeMirror struct {
	activations int
	clears      int
	calls       [][]any
	levels      []Level
}

func (f *fakeMirror) Activate() { f.activations++ }
func (f *fakeMirror) Clear()    { f.clears++ }
func (f *fakeMirror) Append(level Level, args []any) {
	f.levels = append(f.levels, level)
	f.calls = append(f.calls, args)
}

func newMemoryLogger(cfg Config) (*Logger, *MemorySink) {
	sink := NewMemorySink()
	cfg.Sink = sink
	return New(cfg), sink
}

func TestStdoutStderrRouting(t *testing.T) {
	var stdoutBuf, stderrBuf bytes.Buffer
	oldStdout, oldStderr := outStdout, outStderr
	defer func() { outStdout, outStderr = oldStdout, oldStderr }()
	outStdout = &stdoutBuf
	outStderr = &stderrBuf

	Init(Config{})

	Log("hello")
	Info("status")
	Error("boom")

	if got := stdoutBuf.String(); !strings.Contains(got, "hello") || !strings.Contains(got, "status") {
		t.Fatalf("stdout missing expected logs, got: %q", got)
	}
	if got := stderrBuf.String(); !strings.Contains(got, "boom") {
		t.Fatalf("stderr missing expected logs, got: %q", got)
	}
	if strings.Contains(stdoutBuf.String(), "boom") {
		t.Fatalf("error output leaked to stdout: %q", stdoutBuf.String())
	}
}

func TestPlainOutput_NoAnsi(t *testing.T) {
	var stdoutBuf, stderrBuf bytes.Buffer
	l := New(Config{Stdout: &stdoutBuf, Stderr: &stderrBuf})
	l.Log("plain-log")
	l.Error("plain-error")

	if strings.Contains(stdoutBuf.String(), "\033[") || strings.Contains(stderrBuf.String(), "\033[") {
		t.Fatalf("output should be plain (no ANSI codes), got stdout=%q stderr=%q", stdoutBuf.String(), stderrBuf.String())
	}
	if got := strings.TrimSpace(stdoutBuf.String()); got != "[LOG] [STRING] plain-log" {
		t.Fatalf("unexpected plain line: %q", got)
	}
}

func TestColorizedOutput_UsesAnsi(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Stdout: &buf, Colorize: true})
	l.Info("color-info")

	if got := buf.String(); !strings.Contains(got, "\033[") {
		t.Fatalf("expected ANSI color codes when Colorize is enabled, got: %q", got)
	}
}

func TestLevelOrdering(t *testing.T) {
	calls := []struct {
		level Level
		log   func(l *Logger)
	}{
		{ErrorLevel, func(l *Logger) { l.Error("e") }},
		{InfoLevel, func(l *Logger) { l.Info("i") }},
		{LogLevel, func(l *Logger) { l.Log("l") }},
	}

	for _, current := range AllLevels() {
		for _, c := range calls {
			l, sink := newMemoryLogger(Config{})
			l.SetLevel(current)
			c.log(l)

			want := 0
			if c.level <= current {
				want = 1
			}
			if got := len(sink.Entries()); got != want {
				t.Fatalf("level %s, call at %s: got %d records, want %d", current, c.level, got, want)
			}
		}
	}
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	l, _ := newMemoryLogger(Config{})
	l.SetLevel(InfoLevel)

	l.SetLevel(Level(42))
	l.SetLevel(Level(-1))
	l.SetLevelName("verbose")

	if got := l.Level(); got != InfoLevel {
		t.Fatalf("unknown level changed state: got %s", got)
	}

	l.SetLevelName("ERROR")
	if got := l.Level(); got != ErrorLevel {
		t.Fatalf("SetLevelName(ERROR) = %s", got)
	}

	l.SetDefaultLevel()
	if got := l.Level(); got != AllLevel {
		t.Fatalf("SetDefaultLevel() = %s, want all", got)
	}
}

func TestDisableEnable(t *testing.T) {
	l, sink := newMemoryLogger(Config{})
	l.SetLevel(InfoLevel)
	l.Disable()

	l.Error("e")
	l.Info("i")
	l.Log("l")
	l.Group("g")
	if n := len(sink.Entries()); n != 0 {
		t.Fatalf("disabled logger wrote %d records", n)
	}
	if len(sink.Groups()) != 0 {
		t.Fatalf("disabled logger opened a group")
	}

	l.Enable()
	l.Error("e")
	l.Info("i")
	l.Log("l")
	if n := len(sink.Entries()); n != 2 {
		t.Fatalf("re-enabled logger at info level wrote %d records, want 2", n)
	}
}

func TestConfigLevel(t *testing.T) {
	l, _ := newMemoryLogger(Config{Level: "error"})
	if l.Level() != ErrorLevel {
		t.Fatalf("Config.Level not applied: %s", l.Level())
	}
	l, _ = newMemoryLogger(Config{Level: "bogus"})
	if l.Level() != AllLevel {
		t.Fatalf("unknown Config.Level should keep default, got %s", l.Level())
	}
}

func TestTagExtraction(t *testing.T) {
	l, sink := newMemoryLogger(Config{})
	l.Log("NET_2", "dial", 3)
	l.Log("lowercase", "not a tag")
	l.Log("ALONE")

	entries := sink.Entries()
	if got := entries[0].Record.Tag; got != "NET_2" {
		t.Fatalf("tag = %q, want NET_2", got)
	}
	if got := entries[0].Record.Parts; len(got) != 2 || got[1] != "[NUMBER] 3" {
		t.Fatalf("unexpected parts: %q", got)
	}
	if entries[1].Record.Tag != "" || len(entries[1].Record.Parts) != 2 {
		t.Fatalf("lower-case first argument must not become a tag: %+v", entries[1].Record)
	}
	if entries[2].Record.Tag != "" || entries[2].Record.Parts[0] != "[STRING] ALONE" {
		t.Fatalf("a lone argument is the message, got %+v", entries[2].Record)
	}
}

func TestTimestamps(t *testing.T) {
	l, sink := newMemoryLogger(Config{Now: fixedClock()})
	l.Log("a")
	l.SetTimestamps(true)
	l.Log("b")

	lines := sink.Lines()
	if strings.Contains(lines[0], "12:30:45") {
		t.Fatalf("timestamp present while disabled: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[12:30:45] [LOG]") {
		t.Fatalf("timestamp missing: %q", lines[1])
	}
}

func TestStructuredMode(t *testing.T) {
	mirror := &fakeMirror{}
	l, sink := newMemoryLogger(Config{Now: fixedClock()})
	l.ActivateUI(mirror)
	l.SetStructured(true)

	l.Log("TAG", map[string]int{"a": 1})

	rec := sink.Entries()[0].Record
	if rec.Structured == nil {
		t.Fatalf("expected a structured record")
	}
	s := rec.Structured
	if s.Tag != "TAG" || s.Level != "log" {
		t.Fatalf("unexpected record: %+v", s)
	}
	if !strings.Contains(s.Message, `{"a":1}`) {
		t.Fatalf("message %q does not contain the serialized object", s.Message)
	}
	if s.Timestamp != "2024-03-01T12:30:45.000Z" {
		t.Fatalf("timestamp = %q", s.Timestamp)
	}
	if _, ok := mirror.calls[0][0].(StructuredRecord); !ok {
		t.Fatalf("mirror should receive the structured record, got %#v", mirror.calls[0])
	}
}

func TestStructuredConsoleLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Stdout: &buf, Structured: true})
	l.Info("API", "ok")

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "[STRUCTURED] {") || !strings.Contains(line, `"tag":"API"`) {
		t.Fatalf("unexpected structured line: %q", line)
	}
}

func TestCircularValueNeverPanics(t *testing.T) {
	type node struct {
		Name string
		Next *node
	}
	n := &node{Name: "loop"}
	n.Next = n

	m := map[string]any{}
	m["self"] = m

	l, sink := newMemoryLogger(Config{})
	l.Log(n)
	l.Log(m)
	l.SetStructured(true)
	l.Log(n, m)

	lines := sink.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 records, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[*logger.node]") {
		t.Fatalf("expected type fallback for cycle, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[map[string]interface {}]") {
		t.Fatalf("expected type fallback for cyclic map, got %q", lines[1])
	}
}

func TestSelfReferencingInterfaceNeverOverflows(t *testing.T) {
	var x any
	x = &x

	if got := TypeName(x); got != "OBJECT" {
		t.Fatalf("TypeName of a pointer loop = %q", got)
	}
	if !IsStructured(x) {
		t.Fatalf("a pointer loop is treated as an object")
	}

	l, sink := newMemoryLogger(Config{})
	l.Log("CYC", x)
	l.SetStructured(true)
	l.Log(x)

	lines := sink.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}
	if lines[0] != "[LOG] [CYC] [OBJECT] [*interface {}]" {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[*interface {}]") {
		t.Fatalf("structured record should use the type fallback, got %q", lines[1])
	}
}

func TestActivateUI_TypedNilIsIgnored(t *testing.T) {
	l, _ := newMemoryLogger(Config{})
	var typed *fakeMirror

	if got := l.ActivateUI(typed); got != nil {
		t.Fatalf("typed nil mirror should be ignored, got %v", got)
	}
	if l.UI() != nil {
		t.Fatalf("no mirror should be attached")
	}

	m := &fakeMirror{}
	if got := l.ActivateUI(m); got != m || m.activations != 1 {
		t.Fatalf("a real mirror must still activate after a nil one")
	}
}

func TestActivateUI_OneWay(t *testing.T) {
	first, second := &fakeMirror{}, &fakeMirror{}
	l, _ := newMemoryLogger(Config{})

	if got := l.ActivateUI(first); got != first {
		t.Fatalf("first activation returned %v", got)
	}
	if got := l.ActivateUI(second); got != first {
		t.Fatalf("second activation should keep the first mirror")
	}
	if first.activations != 1 || second.activations != 0 {
		t.Fatalf("activations: first=%d second=%d", first.activations, second.activations)
	}

	l.Log("x", 1)
	l.Error("y")
	if len(first.calls) != 2 || first.levels[1] != ErrorLevel {
		t.Fatalf("mirror calls = %v levels = %v", first.calls, first.levels)
	}

	l.SetLevel(ErrorLevel)
	l.Log("suppressed")
	if len(first.calls) != 2 {
		t.Fatalf("gated call reached the mirror")
	}

	l.Reset()
	if l.UI() != first || !l.Settings().UIActive {
		t.Fatalf("Reset must not deactivate the UI")
	}
}

func TestClear(t *testing.T) {
	mirror := &fakeMirror{}
	l, sink := newMemoryLogger(Config{})
	l.ActivateUI(mirror)
	l.Log("one")
	l.Log("two")

	l.Clear()

	lines := sink.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "console cleared") {
		t.Fatalf("unexpected lines after clear: %q", lines)
	}
	if mirror.clears != 1 {
		t.Fatalf("UI was not cleared")
	}
	if !l.Settings().UIActive {
		t.Fatalf("clear deactivated the UI")
	}
}

func TestClear_BlockedConsoleIsReported(t *testing.T) {
	var stdoutBuf bytes.Buffer
	l := New(Config{Stdout: &stdoutBuf})
	l.Clear()

	if got := stdoutBuf.String(); !strings.Contains(got, "console clear was blocked") {
		t.Fatalf("expected blocked-clear notice, got %q", got)
	}
}

func TestReset(t *testing.T) {
	l, _ := newMemoryLogger(Config{})
	l.SetLevel(NoneLevel)
	l.Disable()
	l.SetTimestamps(true)
	l.SetAutoTruncingOff()
	l.SetStructured(true)

	l.Reset()

	want := Settings{Level: AllLevel, Enabled: true, AutoTruncate: true}
	if got := l.Settings(); got != want {
		t.Fatalf("Reset() settings = %+v, want %+v", got, want)
	}
}

func TestGroups(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Stdout: &buf})
	l.Group("outer")
	l.Log("inside")
	l.GroupEnd()
	l.GroupEnd()
	l.Log("outside")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"[GROUP] outer",
		"  [LOG] [STRING] inside",
		"[LOG] [STRING] outside",
	}
	if len(lines) != len(want) {
		t.Fatalf("got lines %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSyslogPrefix(t *testing.T) {
	var stdoutBuf, stderrBuf bytes.Buffer
	l := New(Config{Stdout: &stdoutBuf, Stderr: &stderrBuf, SyslogPrefix: true})
	l.Log("dbg")
	l.Error("bad", map[string]int{"code": 1})

	if line := stdoutBuf.String(); !strings.HasPrefix(line, "<7>[LOG] ") {
		t.Fatalf("stdout should include syslog prefix, got: %q", line)
	}
	for _, line := range strings.Split(strings.TrimSpace(stderrBuf.String()), "\n") {
		if !strings.HasPrefix(line, "<3>") {
			t.Fatalf("every stderr line needs the error priority, got: %q", line)
		}
	}
}

func TestSyslogPrefixForLevels(t *testing.T) {
	cases := map[Level]string{
		ErrorLevel: "<3>",
		InfoLevel:  "<6>",
		LogLevel:   "<7>",
		NoneLevel:  "",
	}
	for level, want := range cases {
		if got := syslogPrefixForLevel(level); got != want {
			t.Fatalf("syslogPrefixForLevel(%s) = %q, want %q", level, got, want)
		}
	}
}
