// Package record defines item record - structured document driving a single
// item page - and means to retrieve it from a record collection.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Record is an item document as it is stored in the collection under
// data/<ID>.json. Every field is optional.
type Record struct {
	Item        string `json:"item,omitempty"`
	ObjectClass string `json:"objectClass,omitempty"`
	Image       string `json:"image,omitempty"`

	Description                 []string `json:"description,omitempty"`
	SpecialContainmentProcedure []string `json:"specialContainmentProcedure,omitempty"`
	ChronologicalHistory        []string `json:"chronologicalHistory,omitempty"`
	SpaceTimeAnomalies          []string `json:"spaceTimeAnomalies,omitempty"`
	AdditionalNotes             []string `json:"additionalNotes,omitempty"`

	Appendix []Entry `json:"appendix,omitempty"`
	Addendum []Entry `json:"addendum,omitempty"`

	Reference References `json:"reference,omitzero"`
}

// Entry is a titled piece of structured section (appendix, addendum).
type Entry struct {
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// Content of the structured section entry - either single string or list of
// strings in the document.
type Content struct {
	Lines []string
	// List is set when document had content as a list.
	List bool
}

// Text returns content lines joined by sep.
func (c Content) Text(sep string) string {
	return strings.Join(c.Lines, sep)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = Content{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("entry content: %w", err)
		}
		*c = Content{Lines: lines, List: true}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("entry content: %w", err)
		}
		*c = Content{Lines: []string{s}}
		return nil
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.List {
		return json.Marshal(c.Lines)
	}
	return json.Marshal(c.Text(""))
}

// References is reference list of the record. Document may have anything
// under "reference", only list of strings is considered proper reference list.
type References struct {
	Lines []string
	// Present is set when "reference" field was in the document.
	Present bool
	// Proper is set when field value was a list of strings.
	Proper bool
}

func (r *References) UnmarshalJSON(data []byte) error {
	*r = References{Present: !bytes.Equal(bytes.TrimSpace(data), []byte("null"))}
	if !r.Present {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		r.Lines, r.Proper = lines, true
	}
	// anything else is tolerated and treated as improper list
	return nil
}

func (r References) MarshalJSON() ([]byte, error) {
	if !r.Proper {
		return []byte("null"), nil
	}
	return json.Marshal(r.Lines)
}

func (r References) IsZero() bool {
	return !r.Present
}

// Parse decodes record document. Document must be a JSON object, unknown
// fields are ignored.
func Parse(data []byte) (*Record, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("record document is not an object")
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
