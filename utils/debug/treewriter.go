// Package debug produces human readable dumps for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w      strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Value writes "label: value" line, value is quoted. Empty values are
// skipped unless keepEmpty is set.
func (tw *TreeWriter) Value(depth int, label, value string, keepEmpty bool) {
	if value == "" && !keepEmpty {
		return
	}
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(quote(value))
	tw.w.WriteByte('\n')
}

// List writes label with number of values followed by indented quoted
// values. Nil list is written as absent.
func (tw *TreeWriter) List(depth int, label string, values []string) {
	if values == nil {
		tw.Line(depth, "%s: <absent>", label)
		return
	}
	tw.Line(depth, "%s: %d", label, len(values))
	for i, v := range values {
		tw.Line(depth+1, "[%d] %s", i, quote(v))
	}
}

func quote(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
