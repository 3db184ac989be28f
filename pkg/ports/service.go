package ports

import (
	"context"

	"github.com/aretw0/coredata/pkg/domain"
)

// Service resolves data on demand: it runs the matching resolver and reads the result back
// from the client store. Served by the HTTP and MCP adapters.
type Service interface {
	EntityRecord(ctx context.Context, kind, name, id string) (domain.Record, error)
	EntityRecords(ctx context.Context, kind, name string) ([]domain.Record, error)

	// EmbedPreview returns the oEmbed preview of url, or false when it cannot be embedded.
	EmbedPreview(ctx context.Context, url string) (any, error)

	// Autosave returns domain.ErrRecordNotFound when the post has no autosave.
	Autosave(ctx context.Context, postType string, postID int) (domain.Record, error)

	Entities(ctx context.Context) []domain.Entity
}
