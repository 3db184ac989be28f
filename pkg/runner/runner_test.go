package runner_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/registry"
	"github.com/aretw0/coredata/pkg/resolvers"
	"github.com/aretw0/coredata/pkg/runner"
)

// fakeAPI answers fetches from a fixed path -> response table.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]error
	requested []string
}

func (f *fakeAPI) Fetch(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, req.Path)
	if err, ok := f.failures[req.Path]; ok {
		return nil, err
	}
	body, ok := f.responses[req.Path]
	if !ok {
		return nil, &domain.FetchError{Status: 404, Path: req.Path}
	}
	return json.RawMessage(body), nil
}

type recorder struct {
	mu      sync.Mutex
	actions []domain.Action
}

func (r *recorder) Dispatch(ctx context.Context, action domain.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return nil
}

func TestRunner_EntityRecord(t *testing.T) {
	api := &fakeAPI{responses: map[string]string{
		"/wp/v2/types/post?context=edit": `{"slug":"post"}`,
	}}
	rec := &recorder{}

	var events []domain.EventType
	hooks := domain.LifecycleHooks{
		OnRequest:  func(ctx context.Context, e *domain.RequestEvent) { events = append(events, e.Type) },
		OnResponse: func(ctx context.Context, e *domain.RequestEvent) { events = append(events, e.Type) },
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) { events = append(events, e.Type) },
	}

	r := runner.New(registry.NewDefault(), api, runner.WithDispatcher(rec), runner.WithLifecycleHooks(hooks))

	action, err := r.Run(context.Background(), resolvers.GetEntityRecord("root", "postType", "post"))
	require.NoError(t, err)

	want := domain.ReceiveEntityRecord("root", "postType", domain.Record{"slug": "post"})
	assert.Equal(t, want, action)
	assert.Equal(t, []domain.Action{want}, rec.actions)
	assert.Equal(t, []string{"/wp/v2/types/post?context=edit"}, api.requested)
	assert.Equal(t, []domain.EventType{domain.EventRequest, domain.EventResponse, domain.EventDispatch}, events)
}

func TestRunner_ConfigErrorIssuesNoRequest(t *testing.T) {
	api := &fakeAPI{}
	var failed error
	hooks := domain.LifecycleHooks{
		OnError: func(ctx context.Context, e *domain.ErrorEvent) { failed = e.Err },
	}
	r := runner.New(registry.NewDefault(), api, runner.WithLifecycleHooks(hooks))

	_, err := r.Run(context.Background(), resolvers.GetEntityRecord("root", "menu", "1"))
	assert.ErrorIs(t, err, domain.ErrEntityConfigNotFound)
	assert.ErrorIs(t, failed, domain.ErrEntityConfigNotFound)
	assert.Empty(t, api.requested)
}

func TestRunner_EmbedPreviewNotFound(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	r := runner.New(registry.NewDefault(), api, runner.WithDispatcher(rec))

	action, err := r.Run(context.Background(), resolvers.GetEmbedPreview("http://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiveEmbedPreview{URL: "http://example.com/", Preview: false}, action)
	assert.Len(t, rec.actions, 1)
}

func TestRunner_EmbedPreviewServerError(t *testing.T) {
	serverErr := &domain.FetchError{Status: 500}
	api := &fakeAPI{failures: map[string]error{
		resolvers.EmbedPreviewPath("http://example.com/"): serverErr,
	}}
	rec := &recorder{}
	r := runner.New(registry.NewDefault(), api, runner.WithDispatcher(rec))

	_, err := r.Run(context.Background(), resolvers.GetEmbedPreview("http://example.com/"))
	assert.ErrorIs(t, err, serverErr)
	assert.Empty(t, rec.actions)
}

func TestRunner_AutosaveLoadsPostTypes(t *testing.T) {
	api := &fakeAPI{responses: map[string]string{
		registry.TypesPath:                      `{"post":{"slug":"post","rest_base":"posts"}}`,
		"/wp/v2/posts/1/autosaves?context=edit": `[]`,
	}}
	rec := &recorder{}
	r := runner.New(registry.NewDefault(), api, runner.WithDispatcher(rec))

	action, err := r.Run(context.Background(), resolvers.GetAutosave(domain.PostRef{ID: 1, Type: "post"}))
	require.NoError(t, err)
	assert.Nil(t, action)
	assert.Empty(t, rec.actions)
	assert.Equal(t, []string{registry.TypesPath, "/wp/v2/posts/1/autosaves?context=edit"}, api.requested)
}

func TestRunner_DispatchFailure(t *testing.T) {
	api := &fakeAPI{responses: map[string]string{
		"/wp/v2/types/post?context=edit": `{"slug":"post"}`,
	}}
	boom := errors.New("store offline")
	r := runner.New(registry.NewDefault(), api, runner.WithDispatcher(ports.DispatcherFunc(func(ctx context.Context, action domain.Action) error {
		return boom
	})))

	_, err := r.Run(context.Background(), resolvers.GetEntityRecord("root", "postType", "post"))
	assert.ErrorIs(t, err, boom)
}

func TestRunner_RunAll(t *testing.T) {
	api := &fakeAPI{responses: map[string]string{
		"/wp/v2/types/post?context=edit": `{"slug":"post"}`,
		"/wp/v2/types?context=edit":      `{"post":{"slug":"post"},"page":{"slug":"page"}}`,
	}}
	r := runner.New(registry.NewDefault(), api, runner.WithConcurrency(2))

	actions, err := r.RunAll(context.Background(),
		resolvers.GetEntityRecord("root", "postType", "post"),
		resolvers.GetEntityRecords("root", "postType"),
		resolvers.GetEmbedPreview("http://example.com/"),
	)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, domain.ActionReceiveEntityRecords, actions[0].Type())
	assert.Len(t, actions[1].(domain.ReceiveEntityRecords).Records, 2)
	assert.Equal(t, domain.ReceiveEmbedPreview{URL: "http://example.com/", Preview: false}, actions[2])

	_, err = r.RunAll(context.Background(), resolvers.GetEntityRecord("root", "menu", "1"))
	assert.ErrorIs(t, err, domain.ErrEntityConfigNotFound)
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.New(registry.NewDefault(), &fakeAPI{})
	_, err := r.Run(ctx, resolvers.GetEmbedPreview("http://example.com/"))
	assert.ErrorIs(t, err, context.Canceled)
}
