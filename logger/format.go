package logger

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultMaxLength is the rendered length above which content is cut.
	DefaultMaxLength = 100
	// DefaultTimeFormat is the time-of-day layout used for timestamps.
	DefaultTimeFormat = "15:04:05"
	// Ellipsis is appended to truncated content.
	Ellipsis = "…"

	isoLayout = "2006-01-02T15:04:05.000Z07:00"
)

// tagPattern matches a leading argument that is consumed as a tag.
var tagPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Record is one formatted logging call.
type Record struct {
	Level     Level
	Label     string // LOG, ERROR, INFO, TIME, GROUP
	Timestamp string // time-of-day, empty when timestamps are off
	Tag       string
	Parts     []string

	// Structured is set instead of Parts when structured output is on.
	Structured *StructuredRecord
}

// Prefix returns the bracketed head of the line: timestamp, label and tag.
func (r Record) Prefix() string {
	var b strings.Builder
	if r.Timestamp != "" {
		b.WriteString("[" + r.Timestamp + "] ")
	}
	b.WriteString("[" + r.Label + "]")
	if r.Tag != "" {
		b.WriteString(" [" + r.Tag + "]")
	}
	return b.String()
}

// Body returns the rendered arguments joined by spaces.
func (r Record) Body() string {
	if r.Structured != nil {
		return r.Structured.Message
	}
	return strings.Join(r.Parts, " ")
}

// Text returns the full unstyled line.
func (r Record) Text() string {
	if r.Structured != nil {
		return r.Structured.String()
	}
	body := r.Body()
	if body == "" {
		return r.Prefix()
	}
	return r.Prefix() + " " + body
}

// StructuredRecord is the machine-readable form of a call.
type StructuredRecord struct {
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
	Tag       string `json:"tag"`
	Message   string `json:"message"`
}

// String renders the record as a bracketed console line.
func (s StructuredRecord) String() string {
	line := "[" + s.Timestamp + "] [" + strings.ToUpper(s.Level) + "]"
	if s.Tag != "" {
		line += " [" + s.Tag + "]"
	}
	return line + " " + s.Message
}

// JSON returns the compact JSON encoding of the record.
func (s StructuredRecord) JSON() string {
	b, err := json.Marshal(s)
	if err != nil {
		return s.String()
	}
	return string(b)
}

// Formatter turns a level and an argument list into a Record.
type Formatter struct {
	Timestamps   bool
	AutoTruncate bool
	MaxLength    int
	TimeFormat   string
	Now          func() time.Time
}

func (f Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f Formatter) maxLength() int {
	if f.MaxLength > 0 {
		return f.MaxLength
	}
	return DefaultMaxLength
}

func (f Formatter) timeFormat() string {
	if f.TimeFormat != "" {
		return f.TimeFormat
	}
	return DefaultTimeFormat
}

// Clock formats t as a time of day.
func (f Formatter) Clock(t time.Time) string {
	return t.Format(f.timeFormat())
}

// Format splits off a leading tag and renders the remaining arguments.
func (f Formatter) Format(level Level, label string, args []any) Record {
	tag, rest := SplitTag(args)
	return f.FormatTagged(level, label, tag, rest)
}

// FormatTagged renders args under an explicit tag. Every argument is
// annotated with its type name.
func (f Formatter) FormatTagged(level Level, label, tag string, args []any) Record {
	rec := Record{Level: level, Label: label, Tag: tag}
	if f.Timestamps {
		rec.Timestamp = f.Clock(f.now())
	}
	rec.Parts = make([]string, 0, len(args))
	for _, arg := range args {
		rec.Parts = append(rec.Parts, "["+TypeName(arg)+"] "+f.Truncate(Stringify(arg, true)))
	}
	return rec
}

// BuildStructured builds the structured form of a call. The message is the
// space-joined compact serialization of the tag-stripped arguments.
func (f Formatter) BuildStructured(level Level, args []any) StructuredRecord {
	tag, rest := SplitTag(args)
	parts := make([]string, 0, len(rest))
	for _, arg := range rest {
		parts = append(parts, Stringify(arg, false))
	}
	return StructuredRecord{
		Level:     level.String(),
		Timestamp: f.now().UTC().Format(isoLayout),
		Tag:       tag,
		Message:   strings.Join(parts, " "),
	}
}

// Truncate caps s at the configured length in characters and appends an
// ellipsis. It returns s untouched when truncation is off.
func (f Formatter) Truncate(s string) string {
	if !f.AutoTruncate {
		return s
	}
	limit := f.maxLength()
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + Ellipsis
}

// SplitTag consumes the first argument as a tag when it is an upper-case
// identifier (letters, digits, underscore) and at least one argument follows.
func SplitTag(args []any) (string, []any) {
	if len(args) < 2 {
		return "", args
	}
	s, ok := args[0].(string)
	if !ok || !tagPattern.MatchString(s) {
		return "", args
	}
	return s, args[1:]
}

// TypeName returns the coarse, upper-cased runtime type of v. Pointers and
// interfaces are followed to the value they hold; a pointer chain that
// loops back on itself is reported as OBJECT.
func TypeName(v any) string {
	rv := reflect.ValueOf(v)
	var seen map[uintptr]struct{}
	for {
		if !rv.IsValid() {
			return "NULL"
		}
		if rv.CanInterface() {
			if _, ok := rv.Interface().(error); ok {
				return "ERROR"
			}
		}
		switch rv.Kind() {
		case reflect.Pointer:
			if rv.IsNil() {
				return "NULL"
			}
			if seen == nil {
				seen = make(map[uintptr]struct{})
			}
			if _, ok := seen[rv.Pointer()]; ok {
				return "OBJECT"
			}
			seen[rv.Pointer()] = struct{}{}
			rv = rv.Elem()
			continue
		case reflect.Interface:
			if rv.IsNil() {
				return "NULL"
			}
			rv = rv.Elem()
			continue
		}
		return kindName(rv.Kind())
	}
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Slice, reflect.Array:
		return "ARRAY"
	case reflect.Map, reflect.Struct:
		return "OBJECT"
	case reflect.String:
		return "STRING"
	case reflect.Bool:
		return "BOOLEAN"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "NUMBER"
	default:
		return strings.ToUpper(k.String())
	}
}

// IsStructured reports whether v is a record or sequence value, the kind
// of argument the UI panel shows behind a details toggle.
func IsStructured(v any) bool {
	switch TypeName(v) {
	case "OBJECT", "ARRAY":
		return true
	}
	return false
}

// Stringify renders v for display. Strings pass through, errors render
// their message, everything else is JSON (two-space indented when indent
// is set). It never panics: values that cannot be encoded fall back to a
// plain conversion.
func Stringify(v any, indent bool) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fallbackString(v)
		}
	}()

	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	}

	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fallbackString(v)
	}
	return string(b)
}

// fallbackString is the best-effort conversion for values JSON rejects
// (cycles, channels, funcs, NaN). Composite values render as their type
// so a self-referencing map cannot recurse.
func fallbackString(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("[%T]", v)
		}
	}()
	if st, ok := v.(fmt.Stringer); ok {
		return st.String()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("[%T]", v)
	}
	return fmt.Sprint(v)
}
