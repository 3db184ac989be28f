package runner

import (
	"log/slog"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithDispatcher configures where produced actions are sent.
// Without a dispatcher actions are only returned to the caller.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(r *Runner) {
		r.Dispatcher = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithConcurrency limits how many resolvers RunAll drives at once (0 = unlimited).
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.Concurrency = n
	}
}
