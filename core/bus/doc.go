// Package bus implements the event dispatch engine: the single entry point
// that fans an emitted event out to local listeners and remote targets.
//
// Every matching consumer, listener or remote dispatch, is scheduled on the
// task manager, so Emit never blocks and completion is observed
// through an explicit Wait. Each consumer receives its own envelope clone;
// no consumer can see another's mutations.
//
// # Basic usage
//
//	b := bus.New(bus.WithLogger(log))
//
//	err := b.On("user.joined", func(ctx context.Context, env event.Envelope) error {
//		log.Info("welcome", logger.Event(env.Event))
//		return nil
//	})
//	if err != nil {
//		return err
//	}
//
//	if err := b.RegisterTarget(map[string]any{
//		"kind":    "url",
//		"address": "https://host/hook",
//		"headers": map[string]any{"Authorization": "Bearer ..."},
//		"events":  []string{"user.joined"},
//	}); err != nil {
//		return err
//	}
//
//	_ = b.Emit(ctx, "user.joined", "Archer")
//
//	// Completion, if needed, is explicit:
//	if err := b.Wait(ctx); err != nil {
//		log.Error("fan-out failures", logger.Error(err))
//	}
//
// # Lifecycle
//
// The bus owns no global state and installs no signal handlers. Processes
// that want scheduled work drained at exit run the bus under a signal-aware
// context:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(b.Run(ctx))
//	_ = g.Wait()
package bus
