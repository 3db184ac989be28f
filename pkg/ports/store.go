package ports

import (
	"context"

	"github.com/aretw0/coredata/pkg/domain"
)

// RecordStore is the client store: it reduces receive actions and serves what it received.
type RecordStore interface {
	ActionDispatcher

	// Record returns the record of kind/name identified by key.
	// Returns domain.ErrRecordNotFound if it was never received.
	Record(ctx context.Context, kind, name, key string) (domain.Record, error)

	// Records returns every record of kind/name in the order they were first received.
	// Returns domain.ErrRecordNotFound if no collection was received.
	Records(ctx context.Context, kind, name string) ([]domain.Record, error)

	// EmbedPreview returns the stored preview of url (false when not embeddable).
	EmbedPreview(ctx context.Context, url string) (any, error)

	// Autosave returns the stored autosave of a post.
	Autosave(ctx context.Context, postID int) (domain.Record, error)
}

// KeyResolver tells a store which record field identifies records of kind/name.
type KeyResolver func(kind, name string) string
