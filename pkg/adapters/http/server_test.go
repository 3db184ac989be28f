package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/coredata/pkg/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockService for testing
type MockService struct {
	records   map[string]domain.Record
	list      []domain.Record
	previews  map[string]any
	autosaves map[int]domain.Record
	fetchErr  error
}

func (m *MockService) EntityRecord(ctx context.Context, kind, name, id string) (domain.Record, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if kind != "root" || name != "postType" {
		return nil, domain.ErrEntityConfigNotFound
	}
	record, ok := m.records[id]
	if !ok {
		return nil, &domain.FetchError{Status: http.StatusNotFound, Code: "rest_no_route"}
	}
	return record, nil
}

func (m *MockService) EntityRecords(ctx context.Context, kind, name string) ([]domain.Record, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.list, nil
}

func (m *MockService) EmbedPreview(ctx context.Context, url string) (any, error) {
	if preview, ok := m.previews[url]; ok {
		return preview, nil
	}
	return false, nil
}

func (m *MockService) Autosave(ctx context.Context, postType string, postID int) (domain.Record, error) {
	autosave, ok := m.autosaves[postID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return autosave, nil
}

func (m *MockService) Entities(ctx context.Context) []domain.Entity {
	return []domain.Entity{{Kind: "root", Name: "postType", BaseURL: "/wp/v2/types", Key: "slug"}}
}

func newTestHandler(t *testing.T, svc *MockService) http.Handler {
	t.Helper()
	handler, err := NewHandler(svc, WithVersion("1.2.3"))
	require.NoError(t, err)
	return handler
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestGetSwagger(t *testing.T) {
	swagger, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", swagger.Info.Version)
	assert.NotNil(t, swagger.Paths.Find("/records/{kind}/{name}/{id}"))
}

func TestServer_GetEntityRecord(t *testing.T) {
	svc := &MockService{records: map[string]domain.Record{"post": {"slug": "post"}}}
	handler := newTestHandler(t, svc)

	w := get(t, handler, "/records/root/postType/post")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"slug":"post"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestServer_ErrorMapping(t *testing.T) {
	t.Run("Config Error", func(t *testing.T) {
		w := get(t, newTestHandler(t, &MockService{}), "/records/root/unknown/1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "entity configuration not found")
	})

	t.Run("Upstream Not Found", func(t *testing.T) {
		w := get(t, newTestHandler(t, &MockService{}), "/records/root/postType/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "rest_no_route", body.Code)
	})

	t.Run("Upstream Server Error", func(t *testing.T) {
		svc := &MockService{fetchErr: &domain.FetchError{Status: http.StatusInternalServerError}}
		w := get(t, newTestHandler(t, svc), "/records/root/postType")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Transport Failure", func(t *testing.T) {
		svc := &MockService{fetchErr: fmt.Errorf("%w: http request failed: connection refused", domain.ErrFetchFailed)}
		w := get(t, newTestHandler(t, svc), "/records/root/postType/post")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})

	t.Run("Internal Error", func(t *testing.T) {
		svc := &MockService{fetchErr: errors.New("store unavailable")}
		w := get(t, newTestHandler(t, svc), "/records/root/postType/post")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_GetEntityRecords(t *testing.T) {
	svc := &MockService{list: []domain.Record{{"id": 1.0}, {"id": 2.0}}}
	w := get(t, newTestHandler(t, svc), "/records/root/postType")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, w.Body.String())
}

func TestServer_GetEmbedPreview(t *testing.T) {
	svc := &MockService{previews: map[string]any{"https://example.com/": map[string]any{"html": "<p>hi</p>"}}}
	handler := newTestHandler(t, svc)

	w := get(t, handler, "/embed?url=https%3A%2F%2Fexample.com%2F")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"html":"<p>hi</p>"}`, w.Body.String())

	w = get(t, handler, "/embed?url=https%3A%2F%2Fnope.example%2F")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", strings.TrimSpace(w.Body.String()))

	w = get(t, handler, "/embed")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, handler, "/embed?url=https%3A%2F%2Fexample.com%2F%1B%5B31m")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_GetAutosave(t *testing.T) {
	svc := &MockService{autosaves: map[int]domain.Record{1: {"title": "draft"}}}
	handler := newTestHandler(t, svc)

	w := get(t, handler, "/autosaves/post/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"draft"}`, w.Body.String())

	w = get(t, handler, "/autosaves/post/2")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, handler, "/autosaves/post/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Meta(t *testing.T) {
	handler := newTestHandler(t, &MockService{})

	w := get(t, handler, "/entities")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"baseURL":"/wp/v2/types"`)

	w = get(t, handler, "/health")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, handler, "/info")
	assert.JSONEq(t, `{"app":"coredata-http","version":"1.2.3","api_version":"1.0.0"}`, w.Body.String())

	w = get(t, handler, "/openapi.yaml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operationId: getEntityRecord")

	w = get(t, handler, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/entities", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
