// Package transcript derives plain text narration of the item record.
package transcript

import (
	"strings"

	"scpview/content"
	"scpview/record"
)

// field extracts narration source of a single record field. Returning false
// means field is absent and contributes nothing.
type field struct {
	label   string
	extract func(*record.Record, *content.Sanitizer) (string, bool)
}

// fields are in narration order.
var fields = []field{
	{"Item Number", func(r *record.Record, s *content.Sanitizer) (string, bool) { return scalar(r.Item, s) }},
	{"Object Class", func(r *record.Record, s *content.Sanitizer) (string, bool) { return scalar(r.ObjectClass, s) }},
	{"Special Containment Procedure", func(r *record.Record, _ *content.Sanitizer) (string, bool) {
		return list(r.SpecialContainmentProcedure)
	}},
	{"Description", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return list(r.Description) }},
	{"Chronological History", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return list(r.ChronologicalHistory) }},
	{"Space-Time Anomalies", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return list(r.SpaceTimeAnomalies) }},
	{"Additional Notes", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return list(r.AdditionalNotes) }},
	{"Appendix", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return entries(r.Appendix) }},
	{"Addendum", func(r *record.Record, _ *content.Sanitizer) (string, bool) { return entries(r.Addendum) }},
	{"Reference", func(r *record.Record, _ *content.Sanitizer) (string, bool) {
		if !r.Reference.Proper {
			return "", false
		}
		return list(r.Reference.Lines)
	}},
}

// scalar value equal to the placeholder is treated as absent.
func scalar(v string, s *content.Sanitizer) (string, bool) {
	return v, len(v) > 0 && !s.IsSentinel(v)
}

func list(lines []string) (string, bool) {
	return strings.Join(lines, " "), len(lines) > 0
}

func entries(list []record.Entry) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, e.Title+": "+e.Content.Text(" "))
	}
	return strings.Join(parts, " "), true
}

// Builder produces narration transcript. Build is a pure function of the
// record.
type Builder struct {
	san *content.Sanitizer
}

func New(san *content.Sanitizer) *Builder {
	return &Builder{san: san}
}

// Build returns transcript: one "<Label>: <text>" line per present field.
func (b *Builder) Build(rec *record.Record) string {
	if rec == nil {
		return ""
	}
	var buf strings.Builder
	for _, f := range fields {
		src, ok := f.extract(rec, b.san)
		if !ok {
			continue
		}
		buf.WriteString(f.label)
		buf.WriteString(": ")
		buf.WriteString(b.san.Narration(src))
		buf.WriteString("\n")
	}
	// second pass over assembled text, also drops trailing line break
	return b.san.RemovePlaceholder(buf.String())
}

// Labels returns field labels in narration order.
func Labels() []string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.label)
	}
	return labels
}
