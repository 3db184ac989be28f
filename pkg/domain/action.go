package domain

import "fmt"

// Record is a single decoded JSON object returned by the REST API.
type Record map[string]any

// Key returns the identity stored under field. It reports false when the field is absent or null.
func (r Record) Key(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

// ActionType tags the receive actions.
type ActionType string

// Standard Action Types
const (
	// ActionReceiveEntityRecords merges records of one entity into the store.
	ActionReceiveEntityRecords ActionType = "RECEIVE_ENTITY_RECORDS"

	// ActionReceiveEmbedPreview stores the oEmbed preview of a URL (or false).
	ActionReceiveEmbedPreview ActionType = "RECEIVE_EMBED_PREVIEW"

	// ActionReceiveAutosave stores the autosave of a post.
	ActionReceiveAutosave ActionType = "RECEIVE_AUTOSAVE"
)

// Action is a normalized instruction for the client store.
// A nil Action means there is nothing to dispatch.
type Action interface {
	Type() ActionType
}

// ReceiveEntityRecords carries records fetched for an entity.
// Query is nil for single record fetches and empty for collection fetches.
type ReceiveEntityRecords struct {
	Kind    string         `json:"kind"`
	Name    string         `json:"name"`
	Records []Record       `json:"records"`
	Query   map[string]any `json:"query,omitempty"`
}

func (ReceiveEntityRecords) Type() ActionType { return ActionReceiveEntityRecords }

// ReceiveEmbedPreview carries the raw oEmbed payload for URL.
// Preview is false when the URL cannot be embedded.
type ReceiveEmbedPreview struct {
	URL     string `json:"url"`
	Preview any    `json:"preview"`
}

func (ReceiveEmbedPreview) Type() ActionType { return ActionReceiveEmbedPreview }

// Embeddable reports whether the preview holds a payload.
func (a ReceiveEmbedPreview) Embeddable() bool {
	b, ok := a.Preview.(bool)
	return !ok || b
}

// ReceiveAutosave carries the latest autosave of a post.
type ReceiveAutosave struct {
	PostID   int    `json:"postId"`
	Autosave Record `json:"autosave"`
}

func (ReceiveAutosave) Type() ActionType { return ActionReceiveAutosave }

// ReceiveEntityRecord builds the action for a single fetched record.
func ReceiveEntityRecord(kind, name string, record Record) ReceiveEntityRecords {
	return ReceiveEntityRecords{Kind: kind, Name: name, Records: []Record{record}}
}
