/*
Package runner drives resolvers to completion against the ports.

It acts as the bridge between the pure resolvers (pkg/resolvers) and the outside world: it
answers lookups from an EntityRegistry, performs fetches through a Fetcher, and hands the
resulting actions to an ActionDispatcher. Every step is logged and reported through
LifecycleHooks.

# Usage

	r := runner.New(reg, fetcher,
		runner.WithDispatcher(store),
		runner.WithLogger(logger),
	)

	action, err := r.Run(ctx, resolvers.GetEntityRecord("root", "postType", "post"))
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
