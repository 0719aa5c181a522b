package loader

import (
	"context"
	"net/http"
	"time"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithHTTPClient sets the client used for http(s) locations.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		l.client = client
	}
}

// WithFetcher replaces the file and HTTP fetch logic entirely. Buffers referenced by a glTF
// document are resolved through the same function.
func WithFetcher(fetch func(ctx context.Context, location string) ([]byte, error)) LoaderBuilderOption {
	return func(l *loader) {
		l.fetch = fetch
	}
}

// WithWorkers sets the number of background workers and the async queue size.
func WithWorkers(workers, queueSize int) LoaderBuilderOption {
	return func(l *loader) {
		if workers > 0 {
			l.workers = workers
		}
		if queueSize > 0 {
			l.queueSize = queueSize
		}
	}
}

// WithTimeout bounds each async load. By default async loads run until they finish or the
// loader is released.
func WithTimeout(timeout time.Duration) LoaderBuilderOption {
	return func(l *loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}
