/*
Package observability turns runner lifecycle events into Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	r := runner.New(reg, fetcher, runner.WithLifecycleHooks(metrics.Hooks()))
	http.Handle("/metrics", metrics.Handler())
*/
package observability
