package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/coredata/pkg/domain"
)

// Registry holds the entity descriptors known to the data layer.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities map[string][]domain.Entity
	kinds    []string
}

// New creates a registry holding entities.
func New(entities ...domain.Entity) *Registry {
	r := &Registry{
		entities: make(map[string][]domain.Entity),
	}
	for _, e := range entities {
		r.Register(e)
	}
	return r
}

// Defaults returns the root entities every WordPress site exposes.
func Defaults() []domain.Entity {
	return []domain.Entity{
		{Name: "postType", Kind: domain.KindRoot, BaseURL: "/wp/v2/types", Key: "slug"},
		{Name: "media", Kind: domain.KindRoot, BaseURL: "/wp/v2/media", Plural: "mediaItems"},
		{Name: "taxonomy", Kind: domain.KindRoot, BaseURL: "/wp/v2/taxonomies", Key: "slug", Plural: "taxonomies"},
		{Name: "site", Kind: domain.KindRoot, BaseURL: "/wp/v2/settings"},
		{Name: "user", Kind: domain.KindRoot, BaseURL: "/wp/v2/users", Plural: "users"},
	}
}

// NewDefault creates a registry holding Defaults.
func NewDefault() *Registry {
	return New(Defaults()...)
}

// Register adds an entity to the registry.
// If an entity with the same kind and name exists, it is overwritten in place.
func (r *Registry) Register(e domain.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.entities[e.Kind]
	if !ok {
		r.kinds = append(r.kinds, e.Kind)
	}
	for i := range list {
		if list[i].Name == e.Name {
			list[i] = e
			return
		}
	}
	r.entities[e.Kind] = append(list, e)
}

// ByKind returns a copy of the descriptors registered for kind.
func (r *Registry) ByKind(kind string) []domain.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entities[kind]
	out := make([]domain.Entity, len(list))
	copy(out, list)
	return out
}

// Lookup returns the descriptor for kind/name.
// Returns domain.ErrEntityConfigNotFound if it is not registered.
func (r *Registry) Lookup(kind, name string) (domain.Entity, error) {
	e, ok := domain.FindEntity(r.ByKind(kind), kind, name)
	if !ok {
		return domain.Entity{}, fmt.Errorf("%w: %s/%s", domain.ErrEntityConfigNotFound, kind, name)
	}
	return e, nil
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// All returns every registered descriptor grouped by kind in registration order.
func (r *Registry) All() []domain.Entity {
	var out []domain.Entity
	for _, kind := range r.Kinds() {
		out = append(out, r.ByKind(kind)...)
	}
	return out
}

// RecordKey returns the identity field of kind/name records, "id" when unknown.
func (r *Registry) RecordKey(kind, name string) string {
	e, err := r.Lookup(kind, name)
	if err != nil {
		return domain.DefaultKey
	}
	return e.RecordKey()
}
