// Package shutdown cancels in-flight work on SIGINT or SIGTERM and runs
// registered cleanup hooks, such as saving the session, exactly once.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.Notify(context.Background())
//	defer stop()
//	h.OnShutdown(func(ctx context.Context) error { return store.Close() })
//	...
//	err := h.Shutdown()
package shutdown
