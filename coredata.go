package coredata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/coredata/pkg/adapters/http"
	"github.com/aretw0/coredata/pkg/adapters/memory"
	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/registry"
	"github.com/aretw0/coredata/pkg/resolvers"
	"github.com/aretw0/coredata/pkg/runner"
)

// Client is the high-level entry point of the library.
// It runs resolvers against a REST API and keeps what they receive in a record store.
type Client struct {
	registry    *registry.Registry
	fetcher     ports.Fetcher
	store       ports.RecordStore
	runner      *runner.Runner
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	concurrency int
	timeout     time.Duration
	httpOpts    []http.ClientOption
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithRegistry replaces the default entity registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// WithFetcher injects a custom Fetcher, bypassing the REST client.
func WithFetcher(f ports.Fetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

// WithStore replaces the default in-memory record store.
func WithStore(s ports.RecordStore) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithConcurrency bounds how many resolvers RunAll drives at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// WithRequestTimeout bounds each REST request of the default fetcher.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithApplicationPassword authenticates the default fetcher with basic auth.
func WithApplicationPassword(username, password string) Option {
	return func(c *Client) {
		c.httpOpts = append(c.httpOpts, http.WithApplicationPassword(username, password))
	}
}

// WithNonce authenticates the default fetcher with a cookie nonce.
func WithNonce(nonce string) Option {
	return func(c *Client) {
		c.httpOpts = append(c.httpOpts, http.WithNonce(nonce))
	}
}

// New creates a Client for the REST API rooted at apiURL (e.g. https://example.com/wp-json).
// apiURL may be empty when WithFetcher is provided.
func New(apiURL string, opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.registry == nil {
		c.registry = registry.NewDefault()
	}

	if c.fetcher == nil {
		if apiURL == "" {
			return nil, fmt.Errorf("apiURL is required when no custom fetcher is provided")
		}
		httpOpts := []http.ClientOption{http.WithClientLogger(c.logger)}
		if c.timeout > 0 {
			httpOpts = append(httpOpts, http.WithTimeout(c.timeout))
		}
		c.fetcher = http.NewClient(apiURL, append(httpOpts, c.httpOpts...)...)
	}

	if c.store == nil {
		c.store = memory.NewStore(memory.WithKeyResolver(c.registry.RecordKey))
	}

	c.runner = runner.New(c.registry, c.fetcher,
		runner.WithDispatcher(c.store),
		runner.WithLogger(c.logger),
		runner.WithLifecycleHooks(c.hooks),
		runner.WithConcurrency(c.concurrency),
	)

	return c, nil
}

// Registry returns the entity registry.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// Store returns the record store fed by every resolver run.
func (c *Client) Store() ports.RecordStore {
	return c.store
}

// Run drives a single resolver and returns the action it dispatched, if any.
func (c *Client) Run(ctx context.Context, res resolvers.Resolver) (domain.Action, error) {
	return c.runner.Run(ctx, res)
}

// RunAll drives independent resolvers concurrently.
func (c *Client) RunAll(ctx context.Context, list ...resolvers.Resolver) ([]domain.Action, error) {
	return c.runner.RunAll(ctx, list...)
}

// Discover loads the descriptors of dynamic kinds (postType, taxonomy) from the API.
func (c *Client) Discover(ctx context.Context, kinds ...string) error {
	if len(kinds) == 0 {
		kinds = []string{domain.KindPostType, domain.KindTaxonomy}
	}
	for _, kind := range kinds {
		if err := c.registry.LoadKind(ctx, c.fetcher, kind); err != nil {
			return fmt.Errorf("discovering %s entities: %w", kind, err)
		}
	}
	return nil
}

// EntityRecord fetches one record of kind/name and returns it as the store holds it.
func (c *Client) EntityRecord(ctx context.Context, kind, name, id string) (domain.Record, error) {
	action, err := c.Run(ctx, resolvers.GetEntityRecord(kind, name, id))
	if err != nil {
		return nil, err
	}
	received, ok := action.(domain.ReceiveEntityRecords)
	if !ok || len(received.Records) == 0 {
		return nil, fmt.Errorf("%w: %T", domain.ErrUnexpectedResume, action)
	}
	field := c.registry.RecordKey(kind, name)
	key, ok := received.Records[0].Key(field)
	if !ok {
		return nil, fmt.Errorf("%s/%s record has no %q: %w", kind, name, field, domain.ErrRecordNotFound)
	}
	return c.store.Record(ctx, kind, name, key)
}

// EntityRecords fetches every record of kind/name and returns the stored collection.
func (c *Client) EntityRecords(ctx context.Context, kind, name string) ([]domain.Record, error) {
	if _, err := c.Run(ctx, resolvers.GetEntityRecords(kind, name)); err != nil {
		return nil, err
	}
	return c.store.Records(ctx, kind, name)
}

// EmbedPreview fetches the oEmbed preview of url. URLs the API cannot embed yield false.
func (c *Client) EmbedPreview(ctx context.Context, url string) (any, error) {
	if _, err := c.Run(ctx, resolvers.GetEmbedPreview(url)); err != nil {
		return nil, err
	}
	return c.store.EmbedPreview(ctx, url)
}

// Autosave fetches the latest autosave of a post.
// Returns domain.ErrRecordNotFound when the post has none.
func (c *Client) Autosave(ctx context.Context, postType string, postID int) (domain.Record, error) {
	action, err := c.Run(ctx, resolvers.GetAutosave(domain.PostRef{ID: postID, Type: postType}))
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, domain.ErrRecordNotFound
	}
	return c.store.Autosave(ctx, postID)
}

// Entities lists the registered descriptors.
func (c *Client) Entities(ctx context.Context) []domain.Entity {
	return c.registry.All()
}
