package ports

import (
	"context"
	"encoding/json"

	"github.com/aretw0/coredata/pkg/domain"
)

// Fetcher performs the GET described by a resolver and returns the raw JSON body.
// Non-2xx responses are returned as *domain.FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error) {
	return f(ctx, req)
}
