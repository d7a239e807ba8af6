package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPLoader fetches records from a site served over HTTP.
type HTTPLoader struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPLoader returns loader for the site at base URL. When client is nil
// http.DefaultClient is used.
func NewHTTPLoader(base string, client *http.Client) (*HTTPLoader, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bad site location %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("bad site location %q: unsupported scheme", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{base: u, client: client}, nil
}

func (l *HTTPLoader) Load(ctx context.Context, id string) (*Record, error) {
	key := KeyFor(id)
	data, err := l.fetch(ctx, key)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.ID = id
			return nil, le
		}
		return nil, &LoadError{ID: id, Key: key, Err: err}
	}
	return decode(id, key, data)
}

// Open gives access to other site resources (images).
func (l *HTTPLoader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := l.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (l *HTTPLoader) fetch(ctx context.Context, key string) ([]byte, error) {
	resp, err := l.get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (l *HTTPLoader) get(ctx context.Context, key string) (*http.Response, error) {
	ref := l.base.ResolveReference(&url.URL{Path: key})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cause := fmt.Errorf("HTTP error: %s", resp.Status)
		if resp.StatusCode == http.StatusNotFound {
			cause = errors.Join(ErrNotFound, cause)
		}
		return nil, &LoadError{Key: key, Status: resp.StatusCode, Err: cause}
	}
	return resp, nil
}
