// The only reason this package exists is because record loading, page
// rendering and configuration all need the same small vocabulary and I do not
// want config to depend on record or the other way around.
package common

import (
	"fmt"
	"strings"
)

// Where records are coming from.
type SourceKind int

const (
	// SourceKindDir is a site directory on local disk.
	SourceKindDir SourceKind = iota
	// SourceKindHTTP is a site served over HTTP(S).
	SourceKindHTTP
	// SourceKindArchive is a zip bundle of the site.
	SourceKindArchive
)

var sourceKindNames = []string{"dir", "http", "archive"}

// SourceKindNames returns list of possible string values of SourceKind.
func SourceKindNames() []string {
	return append([]string(nil), sourceKindNames...)
}

func (k SourceKind) String() string {
	if k < 0 || int(k) >= len(sourceKindNames) {
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
	return sourceKindNames[k]
}

func (k SourceKind) IsValid() bool {
	return k >= 0 && int(k) < len(sourceKindNames)
}

// ParseSourceKind attempts to convert string to SourceKind.
func ParseSourceKind(name string) (SourceKind, error) {
	for i, n := range sourceKindNames {
		if strings.EqualFold(n, name) {
			return SourceKind(i), nil
		}
	}
	return SourceKind(0), fmt.Errorf("%s is not a valid SourceKind, try [%s]", name, strings.Join(sourceKindNames, ", "))
}

func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SourceKind) UnmarshalText(text []byte) error {
	v, err := ParseSourceKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
