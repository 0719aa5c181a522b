package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrHTTPStatus wraps non-2xx responses from remote asset locations.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// fetchFunc reads the bytes at a file path or URL.
type fetchFunc func(ctx context.Context, location string) ([]byte, error)

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// newFetcher returns a fetchFunc that reads http(s) locations with client and everything else
// from the local filesystem.
func newFetcher(client *http.Client) fetchFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, location string) ([]byte, error) {
		if !isRemote(location) {
			data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", location, err)
			}
			return data, nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", location, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%s: %d: %w", location, resp.StatusCode, ErrHTTPStatus)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body of %s: %w", location, err)
		}
		return data, nil
	}
}

// resolveReference resolves ref relative to the location of the document at base.
func resolveReference(base, ref string) string {
	if isRemote(ref) || strings.HasPrefix(ref, "file://") {
		return ref
	}
	if isRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	if filepath.IsAbs(ref) || base == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(strings.TrimPrefix(base, "file://")), ref)
}
