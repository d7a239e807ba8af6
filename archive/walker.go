// Package archive gives read-only access to a zipped site bundle on top of
// "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in the bundle
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *zip.File) error

// Bundle is an opened zip archive with site layout (data/, images/) either at
// the archive root or under a single top level directory.
type Bundle struct {
	rc   *zip.ReadCloser
	root string
	fsys fs.FS
}

// Open opens bundle and locates site root inside of it. Archives with unsafe
// entries (absolute paths or path traversal) are rejected.
func Open(name, marker string) (*Bundle, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	b := &Bundle{rc: rc}

	roots := make(map[string]struct{})
	err = b.Walk("", func(f *zip.File) error {
		if dir, ok := siteRoot(f.Name, marker); ok {
			roots[dir] = struct{}{}
		}
		return nil
	})
	if err != nil {
		rc.Close()
		return nil, err
	}

	switch len(roots) {
	case 0:
		// empty site, lookups will fail with fs.ErrNotExist
		b.fsys = &rc.Reader
	case 1:
		for dir := range roots {
			b.root = dir
		}
		if b.fsys, err = fs.Sub(&rc.Reader, b.root); err != nil {
			rc.Close()
			return nil, err
		}
	default:
		rc.Close()
		return nil, fmt.Errorf("archive %s: more than one site root found", name)
	}
	return b, nil
}

// Root returns directory inside archive which holds the site ("." for archive
// root).
func (b *Bundle) Root() string {
	if b.root == "" {
		return "."
	}
	return b.root
}

// FS returns file system view of the site.
func (b *Bundle) FS() fs.FS {
	return b.fsys
}

func (b *Bundle) Close() error {
	return b.rc.Close()
}

// Walk walks all files in the archive with names starting with prefix calling
// walkFn for each of them.
func (b *Bundle) Walk(prefix string, walkFn WalkFunc) error {
	for _, f := range b.rc.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// siteRoot returns directory containing marker directory for files which are
// located under marker.
func siteRoot(name, marker string) (string, bool) {
	parts := strings.Split(path.Clean(name), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == marker {
			if i == 0 {
				return ".", true
			}
			return path.Join(parts[:i]...), true
		}
	}
	return "", false
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
