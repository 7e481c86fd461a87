// Package task tracks fire-and-forget work so it can be awaited or drained
// before the process exits.
//
// Manager schedules each unit of work on its own goroutine and keeps it in a
// live set until it reaches a terminal state. WaitAll is a re-reading
// barrier over that set; Shutdown drains it idempotently. One task's failure
// never cancels its siblings: failures accumulate and surface only through
// the barrier.
//
// Owners coordinate the lifecycle explicitly:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(manager.Run(ctx))
//	// ... emit events ...
//	if err := g.Wait(); err != nil {
//		log.Error("drain failed", logger.Error(err))
//	}
package task
