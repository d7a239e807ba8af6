package record

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// DataDir is collection directory holding record documents.
const DataDir = "data"

// ErrNotFound is reported when collection has no document for requested id.
var ErrNotFound = errors.New("record not found")

// Loader retrieves single record from a collection. Implementations make a
// single attempt, there are no retries.
type Loader interface {
	Load(ctx context.Context, id string) (*Record, error)
}

// Lister enumerates identifiers of all records in a collection.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// LoadError reports failure to retrieve record document - transport problem
// or missing document.
type LoadError struct {
	ID  string
	Key string
	// Status is response status when known (HTTP), 0 otherwise.
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unable to load record %s (%s): status %d: %v", e.ID, e.Key, e.Status, e.Err)
	}
	return fmt.Sprintf("unable to load record %s (%s): %v", e.ID, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError reports retrieved document which could not be decoded as record.
type ParseError struct {
	ID  string
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse record %s (%s): %v", e.ID, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// KeyFor returns collection key (slash separated path) of record document.
func KeyFor(id string) string {
	return path.Join(DataDir, id+".json")
}

// idFromKey is reverse of KeyFor, returns false for keys which are not record
// documents.
func idFromKey(key string) (string, bool) {
	dir, file := path.Split(key)
	if strings.TrimSuffix(dir, "/") != DataDir || !strings.HasSuffix(file, ".json") {
		return "", false
	}
	id := strings.TrimSuffix(file, ".json")
	return id, len(id) > 0
}

// decode turns retrieved document into record reporting parsing problems
// uniformly for all loaders.
func decode(id, key string, data []byte) (*Record, error) {
	rec, err := Parse(data)
	if err != nil {
		return nil, &ParseError{ID: id, Key: key, Err: err}
	}
	return rec, nil
}
