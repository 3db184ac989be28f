package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/coredata/pkg/adapters/memory"
	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/registry"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore(memory.WithKeyResolver(registry.NewDefault().RecordKey))
	ports.RunRecordStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	record := domain.Record{"id": 1, "title": "original"}
	require.NoError(t, store.Dispatch(ctx, domain.ReceiveEntityRecord("postType", "post", record)))

	record["title"] = "mutated"
	loaded, err := store.Record(ctx, "postType", "post", "1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded["title"])

	loaded["title"] = "mutated again"
	again, _ := store.Record(ctx, "postType", "post", "1")
	assert.Equal(t, "original", again["title"])
}

func TestMemoryStore_SingleRecordIsNotAListing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Dispatch(ctx, domain.ReceiveEntityRecord("postType", "post", domain.Record{"id": 1})))

	_, err := store.Records(ctx, "postType", "post")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
