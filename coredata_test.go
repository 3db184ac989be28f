package coredata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aretw0/coredata/pkg/adapters/http"
	"github.com/aretw0/coredata/pkg/adapters/memory"
	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/persistence/middleware"
	"github.com/aretw0/coredata/pkg/registry"
)

// newSite serves a minimal REST API.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/types", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"post":{"slug":"post","rest_base":"posts"},"page":{"slug":"page","rest_base":"pages"}}`))
	})
	mux.HandleFunc("/wp-json/wp/v2/taxonomies", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"category":{"slug":"category","rest_base":"categories"}}`))
	})
	mux.HandleFunc("/wp-json/wp/v2/posts/1/autosaves", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":10,"parent":1,"title":"draft"}]`))
	})
	mux.HandleFunc("/wp-json/wp/v2/posts/2/autosaves", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/wp-json/wp/v2/posts/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		w.Write([]byte(`{"id":1,"title":"Hello"}`))
	})
	mux.HandleFunc("/wp-json/oembed/1.0/proxy", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "https://youtube.com/watch?v=1" {
			w.Write([]byte(`{"provider_name":"YouTube"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"oembed_invalid_url","message":"Not Found","data":{"status":404}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestClient_EndToEnd(t *testing.T) {
	srv := newSite(t)
	client, err := New(srv.URL + "/wp-json")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Entity Record", func(t *testing.T) {
		post, err := client.EntityRecord(ctx, "postType", "post", "1")
		require.NoError(t, err)
		assert.Equal(t, "Hello", post["title"])

		stored, err := client.Store().Record(ctx, "postType", "post", "1")
		require.NoError(t, err)
		assert.Equal(t, post, stored)
	})

	t.Run("Embed Preview", func(t *testing.T) {
		preview, err := client.EmbedPreview(ctx, "https://youtube.com/watch?v=1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"provider_name": "YouTube"}, preview)

		preview, err = client.EmbedPreview(ctx, "https://example.com/")
		require.NoError(t, err)
		assert.Equal(t, false, preview)
	})

	t.Run("Autosave", func(t *testing.T) {
		autosave, err := client.Autosave(ctx, "post", 1)
		require.NoError(t, err)
		assert.Equal(t, "draft", autosave["title"])

		_, err = client.Autosave(ctx, "post", 2)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Config Error", func(t *testing.T) {
		_, err := client.EntityRecord(ctx, "root", "nope", "1")
		assert.ErrorIs(t, err, domain.ErrEntityConfigNotFound)
	})

	t.Run("Unexpected Failure", func(t *testing.T) {
		_, err := client.EntityRecords(ctx, "root", "user")

		var fe *domain.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusNotFound, fe.Status)
	})
}

func TestClient_Discover(t *testing.T) {
	srv := newSite(t)
	client, err := New(srv.URL + "/wp-json")
	require.NoError(t, err)

	require.NoError(t, client.Discover(context.Background()))

	kinds := map[string][]string{}
	for _, e := range client.Entities(context.Background()) {
		kinds[e.Kind] = append(kinds[e.Kind], e.Name)
	}
	assert.Equal(t, []string{"page", "post"}, kinds[domain.KindPostType])
	assert.Equal(t, []string{"category"}, kinds[domain.KindTaxonomy])

	assert.ErrorIs(t, client.Discover(context.Background(), "root"), domain.ErrKindNotLoadable)
}

func TestClient_ReadsBackFromStore(t *testing.T) {
	srv := newSite(t)
	ctx := context.Background()
	reg := registry.NewDefault()
	underlying := memory.NewStore(memory.WithKeyResolver(reg.RecordKey))

	redact, err := middleware.NewRedactMiddleware([]string{"^title$"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: []byte("0123456789abcdef0123456789abcdef"),
		KeyFor:    reg.RecordKey,
	})
	require.NoError(t, err)

	client, err := New(srv.URL+"/wp-json",
		WithRegistry(reg),
		WithStore(middleware.Chain(underlying, redact, encrypt)),
	)
	require.NoError(t, err)

	post, err := client.EntityRecord(ctx, "postType", "post", "1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, post["title"], "the store view is returned, not the raw payload")
	assert.Equal(t, 1.0, post["id"])

	sealed, err := underlying.Record(ctx, "postType", "post", "1")
	require.NoError(t, err)
	assert.Contains(t, sealed, middleware.EnvelopeField)
	assert.NotContains(t, sealed, "title")

	autosave, err := client.Autosave(ctx, "post", 1)
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, autosave["title"])
	assert.Equal(t, 10.0, autosave["id"])
}

func TestClient_ServedTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	apiURL := srv.URL
	srv.Close()

	client, err := New(apiURL)
	require.NoError(t, err)
	handler, err := httpadapter.NewHandler(client)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/records/root/postType/post", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
