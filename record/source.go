package record

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"scpview/common"
)

// Resources gives access to site files which are not records, images for
// example. Names are slash separated and relative to site root.
type Resources interface {
	ReadResource(ctx context.Context, name string) ([]byte, error)
}

// Source is configured record collection.
type Source interface {
	Loader
	Resources
	io.Closer
}

// OpenSource opens record collection of the requested kind. Location is site
// directory, base URL or zip bundle path accordingly.
func OpenSource(kind common.SourceKind, location string, client *http.Client) (Source, error) {
	switch kind {
	case common.SourceKindDir:
		return NewDirLoader(location), nil
	case common.SourceKindHTTP:
		l, err := NewHTTPLoader(location, client)
		if err != nil {
			return nil, err
		}
		return l, nil
	case common.SourceKindArchive:
		l, err := NewArchiveLoader(location)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported record source kind: %s", kind)
	}
}

func (l *DirLoader) ReadResource(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(l.fsys, name)
}

func (l *DirLoader) Close() error {
	return nil
}

func (l *HTTPLoader) ReadResource(ctx context.Context, name string) ([]byte, error) {
	return l.fetch(ctx, name)
}

func (l *HTTPLoader) Close() error {
	l.client.CloseIdleConnections()
	return nil
}
