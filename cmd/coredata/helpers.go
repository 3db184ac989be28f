package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/coredata"
	"github.com/aretw0/coredata/internal/config"
	"github.com/aretw0/coredata/internal/logging"
	"github.com/aretw0/coredata/internal/presentation/tui"
	"github.com/aretw0/coredata/pkg/adapters/memory"
	"github.com/aretw0/coredata/pkg/adapters/redis"
	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/persistence/middleware"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/registry"
)

// setup holds what a command needs to run resolvers.
type setup struct {
	client *coredata.Client
	logger *slog.Logger
	closer io.Closer
}

func (s *setup) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func newLogger(c *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// newSetup builds the client from cfg: defaults plus the entities file, a redis store
// when configured, and the REST fetcher.
func newSetup(c *config.Config, hooks domain.LifecycleHooks) (*setup, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}

	reg, err := newRegistry(c)
	if err != nil {
		return nil, err
	}

	s := &setup{logger: logger}
	opts := []coredata.Option{
		coredata.WithRegistry(reg),
		coredata.WithLogger(logger),
		coredata.WithLifecycleHooks(hooks),
		coredata.WithRequestTimeout(c.RequestTimeout),
	}
	if c.Username != "" {
		opts = append(opts, coredata.WithApplicationPassword(c.Username, c.ApplicationPassword))
	}
	if c.Nonce != "" {
		opts = append(opts, coredata.WithNonce(c.Nonce))
	}

	store, closer, err := newStore(c, reg, logger)
	if err != nil {
		return nil, err
	}
	s.closer = closer
	opts = append(opts, coredata.WithStore(store))

	client, err := coredata.New(c.APIURL, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = client
	return s, nil
}

func newRegistry(c *config.Config) (*registry.Registry, error) {
	reg := registry.NewDefault()
	if c.EntitiesFile == "" {
		return reg, nil
	}
	entities, err := registry.LoadFile(c.EntitiesFile)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		reg.Register(e)
	}
	return reg, nil
}

func newRenderer(cmd *cobra.Command) *tui.Renderer {
	asJSON, _ := cmd.Flags().GetBool("json")
	return tui.NewRenderer(cmd.OutOrStdout(), asJSON)
}

// splitEntity parses "kind/name".
func splitEntity(ref string) (kind, name string, err error) {
	kind, name, ok := strings.Cut(ref, "/")
	if !ok || kind == "" || name == "" {
		return "", "", fmt.Errorf("invalid entity %q: expected kind/name, e.g. postType/post", ref)
	}
	return kind, name, nil
}

// newStore picks redis or memory and wraps it with the configured redaction and encryption.
func newStore(c *config.Config, reg *registry.Registry, logger *slog.Logger) (ports.RecordStore, io.Closer, error) {
	var (
		store  ports.RecordStore
		closer io.Closer
	)
	if c.RedisAddr != "" {
		rs := redis.New(c.RedisAddr, c.RedisPassword, c.RedisDB,
			redis.WithTTL(c.RedisTTL),
			redis.WithKeyResolver(reg.RecordKey),
		)
		store, closer = rs, rs
		logger.Debug("using redis store", "addr", c.RedisAddr, "db", c.RedisDB)
	} else {
		store = memory.NewStore(memory.WithKeyResolver(reg.RecordKey))
	}

	var mws []middleware.Middleware
	if len(c.RedactFields) > 0 {
		redact, err := middleware.NewRedactMiddleware(c.RedactFields)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, redact)
	}

	key, err := c.DecodeEncryptionKey()
	if err != nil {
		return nil, nil, err
	}
	if key != nil {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
			KeyFor:    reg.RecordKey,
		})
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, encrypt)
	}

	return middleware.Chain(store, mws...), closer, nil
}
