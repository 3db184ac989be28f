package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// collection holds the records of one entity in first-received order.
type collection struct {
	order   []string
	records map[string]domain.Record
	listed  bool
}

// Store implements ports.RecordStore in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	keyFor    ports.KeyResolver
	entities  map[string]*collection
	embeds    map[string]any
	autosaves map[int]domain.Record
}

// Option configures a Store.
type Option func(*Store)

// WithKeyResolver sets how record identity fields are chosen (default: "id").
func WithKeyResolver(fn ports.KeyResolver) Option {
	return func(s *Store) {
		s.keyFor = fn
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		keyFor:    func(string, string) string { return domain.DefaultKey },
		entities:  make(map[string]*collection),
		embeds:    make(map[string]any),
		autosaves: make(map[int]domain.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func entityKey(kind, name string) string {
	return kind + "/" + name
}

// Dispatch reduces a receive action into the store.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		c, ok := s.entities[entityKey(a.Kind, a.Name)]
		if !ok {
			c = &collection{records: make(map[string]domain.Record)}
			s.entities[entityKey(a.Kind, a.Name)] = c
		}
		field := s.keyFor(a.Kind, a.Name)
		for _, record := range a.Records {
			key, ok := record.Key(field)
			if !ok {
				continue
			}
			if _, seen := c.records[key]; !seen {
				c.order = append(c.order, key)
			}
			c.records[key] = copyRecord(record)
		}
		if a.Query != nil {
			c.listed = true
		}
	case domain.ReceiveEmbedPreview:
		s.embeds[a.URL] = a.Preview
	case domain.ReceiveAutosave:
		s.autosaves[a.PostID] = copyRecord(a.Autosave)
	default:
		return fmt.Errorf("memory store: unsupported action %T", action)
	}
	return nil
}

// Record returns a copy of a stored record.
func (s *Store) Record(ctx context.Context, kind, name, key string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.entities[entityKey(kind, name)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	record, ok := c.records[key]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return copyRecord(record), nil
}

// Records returns copies of the stored records of kind/name.
// Only entities received as a collection are listable.
func (s *Store) Records(ctx context.Context, kind, name string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.entities[entityKey(kind, name)]
	if !ok || !c.listed {
		return nil, domain.ErrRecordNotFound
	}
	out := make([]domain.Record, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, copyRecord(c.records[key]))
	}
	return out, nil
}

// EmbedPreview returns the stored preview of url.
func (s *Store) EmbedPreview(ctx context.Context, url string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	preview, ok := s.embeds[url]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return preview, nil
}

// Autosave returns a copy of the stored autosave of postID.
func (s *Store) Autosave(ctx context.Context, postID int) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	autosave, ok := s.autosaves[postID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return copyRecord(autosave), nil
}

// copyRecord is a shallow copy so callers can't mutate store state through the map.
func copyRecord(r domain.Record) domain.Record {
	out := make(domain.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var _ ports.RecordStore = (*Store)(nil)
