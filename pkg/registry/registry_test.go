package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/registry"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := registry.NewDefault()

	e, err := reg.Lookup("root", "postType")
	require.NoError(t, err)
	assert.Equal(t, "/wp/v2/types", e.BaseURL)
	assert.Equal(t, "slug", e.RecordKey())

	_, err = reg.Lookup("root", "menu")
	assert.ErrorIs(t, err, domain.ErrEntityConfigNotFound)

	assert.Equal(t, "slug", reg.RecordKey("root", "postType"))
	assert.Equal(t, "id", reg.RecordKey("root", "media"))
	assert.Equal(t, "id", reg.RecordKey("postType", "unknown"))
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	reg := registry.New(
		domain.Entity{Kind: "postType", Name: "post", BaseURL: "/wp/v2/posts"},
		domain.Entity{Kind: "postType", Name: "page", BaseURL: "/wp/v2/pages"},
	)
	reg.Register(domain.Entity{Kind: "postType", Name: "post", BaseURL: "/custom/posts"})

	list := reg.ByKind("postType")
	require.Len(t, list, 2)
	assert.Equal(t, "/custom/posts", list[0].BaseURL)
	assert.Equal(t, "page", list[1].Name)

	// Mutating the copy must not leak into the registry
	list[0].BaseURL = "/mutated"
	e, _ := reg.Lookup("postType", "post")
	assert.Equal(t, "/custom/posts", e.BaseURL)

	assert.Equal(t, []string{"postType"}, reg.Kinds())
	assert.Len(t, reg.All(), 2)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "entities.yaml")
		content := `
entities:
  - kind: postType
    name: book
    baseURL: /wp/v2/books/
  - kind: root
    name: menu
    baseURL: /wp/v2/menus
    key: slug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		entities, err := registry.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, domain.Entity{Kind: "postType", Name: "book", BaseURL: "/wp/v2/books"}, entities[0])
		assert.Equal(t, "slug", entities[1].Key)
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "entities.json")
		content := `{"entities":[{"kind":"postType","name":"book","baseURL":"/wp/v2/books"}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		entities, err := registry.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "book", entities[0].Name)
	})

	t.Run("Missing file", func(t *testing.T) {
		entities, err := registry.LoadFile(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, entities)
	})

	t.Run("Invalid entity", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("entities:\n  - kind: postType\n    name: book\n"), 0o644))

		_, err := registry.LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("Unknown field", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.yaml")
		require.NoError(t, os.WriteFile(path, []byte("entities:\n  - kind: a\n    name: b\n    baseURL: /c\n    colour: red\n"), 0o644))

		_, err := registry.LoadFile(path)
		assert.Error(t, err)
	})
}

func TestRegistry_LoadKind(t *testing.T) {
	var requested []string
	fetcher := ports.FetcherFunc(func(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error) {
		requested = append(requested, req.Path)
		return json.RawMessage(`{
			"post": {"slug": "post", "rest_base": "posts"},
			"page": {"slug": "page", "rest_base": "pages"},
			"wp_block": {"slug": "wp_block", "rest_base": "blocks"},
			"attachment": {"slug": "attachment", "rest_base": ""}
		}`), nil
	})

	reg := registry.NewDefault()
	require.NoError(t, reg.LoadKind(context.Background(), fetcher, "postType"))

	assert.Equal(t, []string{"/wp/v2/types?context=edit"}, requested)

	post, err := reg.Lookup("postType", "post")
	require.NoError(t, err)
	assert.Equal(t, "/wp/v2/posts", post.BaseURL)

	_, err = reg.Lookup("postType", "attachment")
	assert.ErrorIs(t, err, domain.ErrEntityConfigNotFound)
	assert.Len(t, reg.ByKind("postType"), 3)
}

func TestRegistry_LoadKind_Errors(t *testing.T) {
	reg := registry.NewDefault()

	err := reg.LoadKind(context.Background(), nil, "root")
	assert.ErrorIs(t, err, domain.ErrKindNotLoadable)

	boom := errors.New("boom")
	failing := ports.FetcherFunc(func(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error) {
		return nil, boom
	})
	err = reg.LoadKind(context.Background(), failing, "taxonomy")
	assert.ErrorIs(t, err, boom)
}
