package record

import (
	"fmt"

	"scpview/archive"
)

// ArchiveLoader reads records from a zipped site bundle.
type ArchiveLoader struct {
	*DirLoader
	bundle *archive.Bundle
}

// NewArchiveLoader opens bundle, caller must Close loader when done.
func NewArchiveLoader(name string) (*ArchiveLoader, error) {
	b, err := archive.Open(name, DataDir)
	if err != nil {
		return nil, fmt.Errorf("unable to open site bundle: %w", err)
	}
	return &ArchiveLoader{DirLoader: NewFSLoader(b.FS()), bundle: b}, nil
}

func (l *ArchiveLoader) Close() error {
	return l.bundle.Close()
}
