package record

import (
	"scpview/utils/debug"
)

// String returns readable tree of the record. It exists for debug reports
// and manual inspection only.
func (r *Record) String() string {
	if r == nil {
		return "<nil Record>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Record")
	tw.Value(1, "item", r.Item, true)
	tw.Value(1, "objectClass", r.ObjectClass, true)
	tw.Value(1, "image", r.Image, false)
	tw.List(1, "description", r.Description)
	tw.List(1, "specialContainmentProcedure", r.SpecialContainmentProcedure)
	tw.List(1, "chronologicalHistory", r.ChronologicalHistory)
	tw.List(1, "spaceTimeAnomalies", r.SpaceTimeAnomalies)
	tw.List(1, "additionalNotes", r.AdditionalNotes)
	entries(tw, "appendix", r.Appendix)
	entries(tw, "addendum", r.Addendum)
	switch {
	case r.Reference.Proper:
		tw.List(1, "reference", r.Reference.Lines)
	case r.Reference.Present:
		tw.Line(1, "reference: <not a list>")
	default:
		tw.Line(1, "reference: <absent>")
	}
	return tw.String()
}

func entries(tw *debug.TreeWriter, label string, list []Entry) {
	if list == nil {
		tw.Line(1, "%s: <absent>", label)
		return
	}
	tw.Line(1, "%s: %d", label, len(list))
	for i, e := range list {
		tw.Line(2, "[%d] title %q list %t", i, e.Title, e.Content.List)
		for _, l := range e.Content.Lines {
			tw.Value(3, "content", l, true)
		}
	}
}
