package ports

import (
	"context"

	"github.com/aretw0/coredata/pkg/domain"
)

// EntityRegistry answers the entity lookups resolvers yield.
type EntityRegistry interface {
	// ByKind returns the descriptors registered for kind, in registration order.
	ByKind(kind string) []domain.Entity
}

// KindLoader is implemented by registries that can load the descriptors of a kind on demand
// (e.g. postType entities discovered from /wp/v2/types).
// Returns domain.ErrKindNotLoadable for kinds it does not know how to load.
type KindLoader interface {
	LoadKind(ctx context.Context, fetcher Fetcher, kind string) error
}
