package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "coredata:"

// Store implements ports.RecordStore using Redis.
//
// Layout (relative to the prefix):
//
//	record:{kind}/{name}:{key}  JSON record
//	index:{kind}/{name}         ZSET of record keys scored by first-received sequence
//	listed:{kind}/{name}        set once a collection was received
//	embed:{url}                 JSON preview (false when not embeddable)
//	autosave:{postID}           JSON autosave
//	seq                         sequence used for index scores
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	keyFor ports.KeyResolver
}

type Option func(*Store)

// WithTTL sets the expiration of every key written.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithKeyResolver sets how record identity fields are chosen (default: "id").
func WithKeyResolver(fn ports.KeyResolver) Option {
	return func(s *Store) {
		s.keyFor = fn
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
		keyFor: func(string, string) string { return domain.DefaultKey },
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) recordKey(kind, name, key string) string {
	return s.prefix + "record:" + kind + "/" + name + ":" + key
}

func (s *Store) indexKey(kind, name string) string {
	return s.prefix + "index:" + kind + "/" + name
}

func (s *Store) listedKey(kind, name string) string {
	return s.prefix + "listed:" + kind + "/" + name
}

func (s *Store) embedKey(url string) string {
	return s.prefix + "embed:" + url
}

func (s *Store) autosaveKey(postID int) string {
	return s.prefix + "autosave:" + strconv.Itoa(postID)
}

// Dispatch persists a receive action.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) error {
	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		return s.saveRecords(ctx, a)
	case domain.ReceiveEmbedPreview:
		return s.setJSON(ctx, s.embedKey(a.URL), a.Preview)
	case domain.ReceiveAutosave:
		return s.setJSON(ctx, s.autosaveKey(a.PostID), a.Autosave)
	default:
		return fmt.Errorf("redis store: unsupported action %T", action)
	}
}

func (s *Store) saveRecords(ctx context.Context, a domain.ReceiveEntityRecords) error {
	if len(a.Records) == 0 && a.Query == nil {
		return nil
	}

	// Reserve one score per record so the index keeps first-received order.
	last, err := s.client.IncrBy(ctx, s.prefix+"seq", int64(len(a.Records))).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve sequence: %w", err)
	}
	first := last - int64(len(a.Records)) + 1

	field := s.keyFor(a.Kind, a.Name)
	index := s.indexKey(a.Kind, a.Name)

	pipe := s.client.TxPipeline()
	for i, record := range a.Records {
		key, ok := record.Key(field)
		if !ok {
			continue
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		pipe.Set(ctx, s.recordKey(a.Kind, a.Name, key), data, s.ttl)
		pipe.ZAddNX(ctx, index, backend.Z{Score: float64(first + int64(i)), Member: key})
	}
	if a.Query != nil {
		pipe.Set(ctx, s.listedKey(a.Kind, a.Name), "1", s.ttl)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, index, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Record loads a single record.
func (s *Store) Record(ctx context.Context, kind, name, key string) (domain.Record, error) {
	var record domain.Record
	if err := s.getJSON(ctx, s.recordKey(kind, name, key), &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Records loads the records of a collection in first-received order.
// Records that expired individually are skipped.
func (s *Store) Records(ctx context.Context, kind, name string) ([]domain.Record, error) {
	listed, err := s.client.Exists(ctx, s.listedKey(kind, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if listed == 0 {
		return nil, domain.ErrRecordNotFound
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(kind, name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if len(keys) == 0 {
		return []domain.Record{}, nil
	}

	recordKeys := make([]string, len(keys))
	for i, key := range keys {
		recordKeys[i] = s.recordKey(kind, name, key)
	}

	values, err := s.client.MGet(ctx, recordKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	records := make([]domain.Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var record domain.Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", recordKeys[i], err)
		}
		records = append(records, record)
	}
	return records, nil
}

// EmbedPreview loads the preview of url.
func (s *Store) EmbedPreview(ctx context.Context, url string) (any, error) {
	var preview any
	if err := s.getJSON(ctx, s.embedKey(url), &preview); err != nil {
		return nil, err
	}
	return preview, nil
}

// Autosave loads the autosave of postID.
func (s *Store) Autosave(ctx context.Context, postID int) (domain.Record, error) {
	var autosave domain.Record
	if err := s.getJSON(ctx, s.autosaveKey(postID), &autosave); err != nil {
		return nil, err
	}
	return autosave, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ports.RecordStore = (*Store)(nil)
