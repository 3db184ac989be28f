package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/coredata/pkg/domain"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore implementation
// adheres to the defined interface contract.
// The store must identify root/postType records by "slug" and everything else by "id".
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")
	name := "contract-" + suffix

	t.Run("Receive and Read Records", func(t *testing.T) {
		err := store.Dispatch(ctx, domain.ReceiveEntityRecords{
			Kind:    "postType",
			Name:    name,
			Records: []domain.Record{{"id": 2, "title": "b"}, {"id": 1, "title": "a"}},
			Query:   map[string]any{},
		})
		require.NoError(t, err, "Dispatch should not return error")

		record, err := store.Record(ctx, "postType", name, "1")
		require.NoError(t, err)
		assert.Equal(t, "a", record["title"])

		records, err := store.Records(ctx, "postType", name)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "b", records[0]["title"], "records keep first-received order")
	})

	t.Run("Receive Overwrites", func(t *testing.T) {
		err := store.Dispatch(ctx, domain.ReceiveEntityRecord("postType", name, domain.Record{"id": 1, "title": "a2"}))
		require.NoError(t, err)

		record, err := store.Record(ctx, "postType", name, "1")
		require.NoError(t, err)
		assert.Equal(t, "a2", record["title"])

		records, err := store.Records(ctx, "postType", name)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("Records Without Key Are Skipped", func(t *testing.T) {
		keyless := "keyless-" + suffix
		err := store.Dispatch(ctx, domain.ReceiveEntityRecords{
			Kind:    "postType",
			Name:    keyless,
			Records: []domain.Record{{"title": "x"}, {"id": nil, "title": "y"}, {"id": 3, "title": "z"}},
			Query:   map[string]any{},
		})
		require.NoError(t, err)

		records, err := store.Records(ctx, "postType", keyless)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "z", records[0]["title"])
	})

	t.Run("Custom Record Key", func(t *testing.T) {
		err := store.Dispatch(ctx, domain.ReceiveEntityRecord("root", "postType", domain.Record{"slug": "post-" + suffix}))
		require.NoError(t, err)

		record, err := store.Record(ctx, "root", "postType", "post-"+suffix)
		require.NoError(t, err)
		assert.Equal(t, "post-"+suffix, record["slug"])
	})

	t.Run("Record Non-Existent", func(t *testing.T) {
		_, err := store.Record(ctx, "postType", name, "404")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)

		_, err = store.Records(ctx, "postType", "missing-"+suffix)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Embed Preview", func(t *testing.T) {
		url := "http://example.com/" + suffix
		require.NoError(t, store.Dispatch(ctx, domain.ReceiveEmbedPreview{URL: url, Preview: false}))

		preview, err := store.EmbedPreview(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, false, preview)

		_, err = store.EmbedPreview(ctx, url+"/other")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Autosave", func(t *testing.T) {
		require.NoError(t, store.Dispatch(ctx, domain.ReceiveAutosave{PostID: 7, Autosave: domain.Record{"title": "draft"}}))

		autosave, err := store.Autosave(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "draft", autosave["title"])

		_, err = store.Autosave(ctx, 8)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}
