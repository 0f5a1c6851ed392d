package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Opener resolves a resource location to a readable stream.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// SourceOpener reads local paths, file:// URLs and http(s) URLs.
type SourceOpener struct {
	client *http.Client
}

// NewSourceOpener returns an opener that fetches remote resources with client.
func NewSourceOpener(client *http.Client) *SourceOpener {
	if client == nil {
		client = http.DefaultClient
	}
	return &SourceOpener{client: client}
}

// Open returns the resource body. Callers own the returned stream.
func (o *SourceOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("empty location")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare path, including windows drive letters
		return os.Open(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
		return os.Open(path)
	case "http", "https":
		return o.fetch(ctx, u.String())
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (o *SourceOpener) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
