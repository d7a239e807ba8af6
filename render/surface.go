// Package render maps item record onto named display targets of a page.
package render

import "errors"

// Display target names.
const (
	TargetItem                 = "item"
	TargetObjectClass          = "objectClass"
	TargetImage                = "scpImage"
	TargetDescription          = "description"
	TargetProcedure            = "specialContainmentProcedure"
	TargetChronologicalHistory = "chronologicalHistory"
	TargetSpaceTimeAnomalies   = "spaceTimeAnomalies"
	TargetAdditionalNotes      = "additionalNotes"
	TargetAppendix             = "appendix"
	TargetAddendum             = "addendum"
	TargetReference            = "reference"
	TargetPlayDescription      = "playDescription"
)

// ErrMissingTarget is reported when page does not have display target the
// renderer needs. This is page template problem, not record data problem.
var ErrMissingTarget = errors.New("display target not found")

// ErrNoRecord is reported when there is no record to render.
var ErrNoRecord = errors.New("no record to render")

// Target is a pre-existing slot on the page content is written into.
type Target interface {
	// SetText replaces target content with plain text.
	SetText(text string)
	// SetHTML replaces target content with markup fragment.
	SetHTML(markup string)
	SetAttr(name, value string)
	SetVisible(visible bool)
}

// Surface looks up display targets by name.
type Surface interface {
	Target(name string) (Target, bool)
}
