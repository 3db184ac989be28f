package ports

import (
	"context"

	"github.com/aretw0/coredata/pkg/domain"
)

// ActionDispatcher defines where resolved actions go.
// The resolvers emit actions, and the host implements this interface to apply them.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, action domain.Action) error
}

// DispatcherFunc adapts a function to the ActionDispatcher interface.
type DispatcherFunc func(ctx context.Context, action domain.Action) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, action domain.Action) error {
	return f(ctx, action)
}
