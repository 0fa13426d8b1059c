package catalog

import (
	"context"
	"net/url"
)

// API is the read side of the HTTP client.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}
