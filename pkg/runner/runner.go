package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/resolvers"
)

// Runner performs the I/O that resolvers describe.
type Runner struct {
	// Registry answers entity lookups. If it also implements ports.KindLoader, kinds
	// with no matching descriptor are loaded on demand.
	Registry ports.EntityRegistry

	// Fetcher performs the requests.
	Fetcher ports.Fetcher

	// Dispatcher receives produced actions. Optional.
	Dispatcher ports.ActionDispatcher

	// Hooks receive lifecycle events. Nil callbacks are skipped.
	Hooks domain.LifecycleHooks

	// Logger is used for step logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Concurrency bounds RunAll. 0 means unlimited.
	Concurrency int
}

// New creates a Runner answering lookups from registry and fetches from fetcher.
func New(registry ports.EntityRegistry, fetcher ports.Fetcher, opts ...Option) *Runner {
	r := &Runner{
		Registry: registry,
		Fetcher:  fetcher,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run drives res until it finishes and returns the action it produced, if any.
// Errors from the resolver (configuration errors, unexpected fetch failures) are returned
// unchanged.
func (r *Runner) Run(ctx context.Context, res resolvers.Resolver) (domain.Action, error) {
	logger := r.Logger.With("resolver", res.Name())

	var action domain.Action
	step, err := res.Next(nil)

	for {
		if err != nil {
			logger.Debug("resolver failed", "err", err)
			r.emitError(ctx, res.Name(), err)
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		switch step.Kind {
		case resolvers.StepLookup:
			logger.Debug("lookup", "kind", step.Query.Kind, "name", step.Query.Name)
			entities, lookupErr := r.lookup(ctx, step.Query)
			if lookupErr != nil {
				step, err = res.Throw(lookupErr)
				continue
			}
			step, err = res.Next(entities)

		case resolvers.StepFetch:
			payload, fetchErr := r.fetch(ctx, res.Name(), step.Request)
			if fetchErr != nil {
				logger.Debug("fetch failed", "path", step.Request.Path, "err", fetchErr)
				step, err = res.Throw(fetchErr)
				continue
			}
			step, err = res.Next(payload)

		case resolvers.StepDispatch:
			action = step.Action
			if r.Dispatcher != nil {
				if dispatchErr := r.Dispatcher.Dispatch(ctx, action); dispatchErr != nil {
					err = fmt.Errorf("dispatching %s: %w", action.Type(), dispatchErr)
					continue
				}
			}
			logger.Debug("dispatched", "action", action.Type())
			r.emitDispatch(ctx, res.Name(), action)
			step, err = res.Next(nil)

		case resolvers.StepDone:
			return action, nil

		default:
			err = fmt.Errorf("resolver %s yielded %s", res.Name(), step.Kind)
		}
	}
}

// RunAll drives independent resolvers concurrently.
// Actions are returned in the order of the resolvers; the first error cancels the rest.
func (r *Runner) RunAll(ctx context.Context, list ...resolvers.Resolver) ([]domain.Action, error) {
	actions := make([]domain.Action, len(list))

	g, ctx := errgroup.WithContext(ctx)
	if r.Concurrency > 0 {
		g.SetLimit(r.Concurrency)
	}

	for i, res := range list {
		g.Go(func() error {
			action, err := r.Run(ctx, res)
			if err != nil {
				return fmt.Errorf("%s: %w", res.Name(), err)
			}
			actions[i] = action
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *Runner) lookup(ctx context.Context, q domain.EntityQuery) ([]domain.Entity, error) {
	entities := r.Registry.ByKind(q.Kind)
	if _, ok := domain.FindEntity(entities, q.Kind, q.Name); ok {
		return entities, nil
	}

	loader, ok := r.Registry.(ports.KindLoader)
	if !ok {
		return entities, nil
	}

	if err := loader.LoadKind(ctx, r.Fetcher, q.Kind); err != nil {
		if errors.Is(err, domain.ErrKindNotLoadable) {
			return entities, nil
		}
		return nil, err
	}

	return r.Registry.ByKind(q.Kind), nil
}

func (r *Runner) fetch(ctx context.Context, resolver string, req domain.FetchRequest) (json.RawMessage, error) {
	if r.Hooks.OnRequest != nil {
		r.Hooks.OnRequest(ctx, &domain.RequestEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRequest, Resolver: resolver},
			Path:      req.Path,
		})
	}

	start := time.Now()
	payload, err := r.Fetcher.Fetch(ctx, req)

	if r.Hooks.OnResponse != nil {
		event := &domain.RequestEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResponse, Resolver: resolver},
			Path:      req.Path,
			Duration:  time.Since(start),
			IsError:   err != nil,
		}
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			event.Status = fe.Status
		}
		r.Hooks.OnResponse(ctx, event)
	}

	return payload, err
}

func (r *Runner) emitDispatch(ctx context.Context, resolver string, action domain.Action) {
	if r.Hooks.OnDispatch == nil {
		return
	}
	r.Hooks.OnDispatch(ctx, &domain.DispatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDispatch, Resolver: resolver},
		Action:    action.Type(),
	})
}

func (r *Runner) emitError(ctx context.Context, resolver string, err error) {
	if r.Hooks.OnError == nil {
		return
	}
	r.Hooks.OnError(ctx, &domain.ErrorEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventError, Resolver: resolver},
		Err:       err,
	})
}
