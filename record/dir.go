package record

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/maruel/natural"
)

// DirLoader reads records from a site directory (or any fs.FS with the same
// layout).
type DirLoader struct {
	fsys fs.FS
}

// NewDirLoader returns loader for site directory root.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{fsys: os.DirFS(root)}
}

// NewFSLoader returns loader over arbitrary file system.
func NewFSLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{fsys: fsys}
}

func (l *DirLoader) Load(ctx context.Context, id string) (*Record, error) {
	key := KeyFor(id)
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{ID: id, Key: key, Err: err}
	}
	data, err := fs.ReadFile(l.fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(ErrNotFound, err)
		}
		return nil, &LoadError{ID: id, Key: key, Err: err}
	}
	return decode(id, key, data)
}

// List returns naturally sorted identifiers of all documents in data
// directory.
func (l *DirLoader) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, DataDir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		if id, ok := idFromKey(DataDir + "/" + e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Sort(natural.StringSlice(ids))
	return ids, nil
}

// Open gives access to other site resources (images).
func (l *DirLoader) Open(name string) (fs.File, error) {
	return l.fsys.Open(name)
}
