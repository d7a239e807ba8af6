package render

import (
	"fmt"
	"strings"

	"scpview/record"
)

const (
	// NotAvailable is shown for absent scalar fields.
	NotAvailable = "N/A"

	lineBreak  = "<br>"
	blankLine  = "<br><br>"
	imagesPath = "images/"
)

// Renderer writes record fields onto a surface.
type Renderer struct {
	imagesPrefix string
}

// Option configures Renderer.
type Option func(*Renderer)

// WithImagesPrefix sets path prefix of image resources.
func WithImagesPrefix(prefix string) Option {
	return func(r *Renderer) {
		r.imagesPrefix = prefix
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{imagesPrefix: imagesPath}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ImagePath returns page relative path of the image resource.
func (r *Renderer) ImagePath(ref string) string {
	return r.imagesPrefix + ref
}

// Render writes every display field of the record. All targets are looked up
// before anything is written, so missing target or record leaves surface
// untouched.
func (r *Renderer) Render(s Surface, rec *record.Record) error {
	if rec == nil {
		return ErrNoRecord
	}
	names := []string{
		TargetItem, TargetObjectClass, TargetImage, TargetDescription, TargetProcedure,
		TargetChronologicalHistory, TargetSpaceTimeAnomalies, TargetAdditionalNotes,
		TargetAppendix, TargetAddendum, TargetReference,
	}
	targets := make(map[string]Target, len(names))
	for _, name := range names {
		t, ok := s.Target(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingTarget, name)
		}
		targets[name] = t
	}

	scalar(targets[TargetItem], rec.Item)
	scalar(targets[TargetObjectClass], rec.ObjectClass)

	if img := targets[TargetImage]; len(rec.Image) > 0 {
		img.SetAttr("src", r.ImagePath(rec.Image))
		img.SetVisible(true)
	} else {
		img.SetVisible(false)
	}

	// NOTE: description and containment procedure show N/A when absent
	// instead of being hidden like other rich text sections. This is how
	// pages always looked, keep it until product decides otherwise.
	fallbackList(targets[TargetDescription], rec.Description)
	fallbackList(targets[TargetProcedure], rec.SpecialContainmentProcedure)

	optionalList(targets[TargetChronologicalHistory], rec.ChronologicalHistory)
	optionalList(targets[TargetSpaceTimeAnomalies], rec.SpaceTimeAnomalies)
	optionalList(targets[TargetAdditionalNotes], rec.AdditionalNotes)

	optionalEntries(targets[TargetAppendix], rec.Appendix)
	optionalEntries(targets[TargetAddendum], rec.Addendum)

	if ref := targets[TargetReference]; rec.Reference.Proper {
		ref.SetHTML(strings.Join(rec.Reference.Lines, blankLine))
		ref.SetVisible(true)
	} else {
		ref.SetVisible(false)
	}
	return nil
}

func scalar(t Target, v string) {
	if len(v) == 0 {
		v = NotAvailable
	}
	t.SetText(v)
}

func fallbackList(t Target, lines []string) {
	if lines == nil {
		t.SetHTML(NotAvailable)
		return
	}
	t.SetHTML(strings.Join(lines, lineBreak))
}

func optionalList(t Target, lines []string) {
	if lines == nil {
		t.SetVisible(false)
		return
	}
	t.SetHTML(strings.Join(lines, lineBreak))
	t.SetVisible(true)
}

func optionalEntries(t Target, entries []record.Entry) {
	if entries == nil {
		t.SetVisible(false)
		return
	}
	t.SetHTML(FormatEntries(entries))
	t.SetVisible(true)
}

// FormatEntries renders structured section: bold title, line break, content
// lines separated by line breaks; entries are separated by blank line.
func FormatEntries(entries []record.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, "<b>"+e.Title+"</b>"+lineBreak+e.Content.Text(lineBreak))
	}
	return strings.Join(parts, blankLine)
}
