package panel

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/mordilloSan/slogger/logger"
)

const (
	// PreviewLength caps the single-line preview of structured entries.
	PreviewLength = 100
	// ExportMIMEType is the content type of exported files.
	ExportMIMEType = "text/plain"

	exportPrefix = "slog-export-"
	exportLayout = "2006-01-02T15:04:05.000Z07:00"

	showDetails = "▶ Show Details"
	hideDetails = "▼ Hide Details"
)

var (
	// ErrInactive is returned by operations on a panel that was never activated.
	ErrInactive = errors.New("panel is not active")
	// ErrNoEntry is returned for an entry index that does not exist.
	ErrNoEntry = errors.New("no such entry")
	// ErrNoDetails is returned when toggling an entry without a detail pane.
	ErrNoDetails = errors.New("entry has no details")
)

// Entry is one rendered log line.
type Entry struct {
	Level logger.Level `json:"-"`
	// Class is the level name used for styling.
	Class string `json:"level"`
	// Text is the visible line: the full message for plain entries, the
	// preview for entries with details.
	Text     string    `json:"text"`
	Detail   string    `json:"detail,omitempty"`
	Expanded bool      `json:"expanded"`
	Time     time.Time `json:"time"`
}

// HasDetails reports whether the entry carries a collapsible detail pane.
func (e Entry) HasDetails() bool {
	return e.Detail != ""
}

// ToggleLabel returns the label of the entry's details toggle, or "" for
// plain entries.
func (e Entry) ToggleLabel() string {
	switch {
	case !e.HasDetails():
		return ""
	case e.Expanded:
		return hideDetails
	default:
		return showDetails
	}
}

// ExportText is the text written for the entry on export.
func (e Entry) ExportText() string {
	if e.HasDetails() {
		return e.Detail
	}
	return e.Text
}

// ExportFile is a rendered export, ready to be offered as a download.
type ExportFile struct {
	Name     string
	MIMEType string
	Content  string
}

// Panel is the in-memory model of the floating log viewer. It starts
// inactive and ignores log calls until Activate is called. It is safe for
// concurrent use.
type Panel struct {
	mu        sync.RWMutex
	active    bool
	visible   bool
	entries   []Entry
	listeners []func()
	now       func() time.Time
}

// Option configures a Panel.
type Option func(*Panel)

// WithClock overrides the clock used for entry times and export names.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		p.now = now
	}
}

// New returns an inactive panel.
func New(opts ...Option) *Panel {
	p := &Panel{
		entries: make([]Entry, 0, 256),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Activate switches the panel on. Activating an active panel is a no-op.
func (p *Panel) Activate() {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.mu.Unlock()
	p.notify()
}

// Active reports whether the panel has been activated.
func (p *Panel) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Append renders args as a new entry. Blank messages are skipped. When any
// argument is structured the entry gets a collapsed detail pane holding the
// full text and a one-line preview.
func (p *Panel) Append(level logger.Level, args []any) {
	parts := make([]string, 0, len(args))
	hasObject := false
	for _, arg := range args {
		parts = append(parts, logger.Stringify(arg, true))
		if logger.IsStructured(arg) {
			hasObject = true
		}
	}
	message := strings.Join(parts, " ")
	if strings.TrimSpace(message) == "" {
		return
	}

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	entry := Entry{Level: level, Class: level.String(), Text: message, Time: p.now()}
	if hasObject {
		entry.Text = preview(message)
		entry.Detail = message
	}
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
	p.notify()
}

func preview(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	if utf8.RuneCountInString(line) > PreviewLength {
		line = string([]rune(line)[:PreviewLength])
	}
	if utf8.RuneCountInString(message) > PreviewLength {
		line += logger.Ellipsis
	}
	return line
}

// Entries returns a copy of the entries in arrival order.
func (p *Panel) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries.
func (p *Panel) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// ToggleDetails flips the expanded state of entry i and returns the new state.
func (p *Panel) ToggleDetails(i int) (bool, error) {
	p.mu.Lock()
	if i < 0 || i >= len(p.entries) {
		p.mu.Unlock()
		return false, errors.Wrapf(ErrNoEntry, "index %d", i)
	}
	if !p.entries[i].HasDetails() {
		p.mu.Unlock()
		return false, errors.Wrapf(ErrNoDetails, "index %d", i)
	}
	p.entries[i].Expanded = !p.entries[i].Expanded
	expanded := p.entries[i].Expanded
	p.mu.Unlock()
	p.notify()
	return expanded, nil
}

// Clear removes every entry. The panel stays active.
func (p *Panel) Clear() {
	p.mu.Lock()
	p.entries = p.entries[:0]
	p.mu.Unlock()
	p.notify()
}

// Toggle shows or hides the panel and returns the new visibility.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	p.visible = !p.visible
	visible := p.visible
	p.mu.Unlock()
	p.notify()
	return visible
}

// Visible reports whether the panel is shown. A new panel starts hidden.
func (p *Panel) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// OnChange registers fn to run after every change. Listeners run on the
// goroutine that made the change, outside the panel's lock.
func (p *Panel) OnChange(fn func()) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Panel) notify() {
	p.mu.RLock()
	listeners := append([]func(){}, p.listeners...)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Export renders every entry as newline-separated plain text, detail text
// taking precedence over the visible line.
func (p *Panel) Export() (ExportFile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.active {
		return ExportFile{}, ErrInactive
	}

	var b strings.Builder
	for _, e := range p.entries {
		b.WriteString(e.ExportText())
		b.WriteString("\n\n")
	}
	return ExportFile{
		Name:     exportPrefix + p.now().UTC().Format(exportLayout) + ".txt",
		MIMEType: ExportMIMEType,
		Content:  b.String(),
	}, nil
}

// SaveExport writes the export into dir and returns the file path.
func (p *Panel) SaveExport(dir string) (string, error) {
	file, err := p.Export()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create export dir %s", dir)
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
		return "", errors.Wrapf(err, "write export %s", path)
	}
	return path, nil
}

// Close tears the panel down: it deactivates, drops every entry and
// forgets its listeners.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.visible = false
	p.entries = nil
	p.listeners = nil
}

var _ logger.Mirror = (*Panel)(nil)
