// Package queueingress consumes remote task invocations from a broker
// stream and re-emits them as local events. Together with the queue
// dispatcher it forms the broker leg of cross-process fan-out: one process
// registers a queue target, another runs a Consumer on the same stream.
//
//	cons, err := queueingress.New(client, b,
//		queueingress.WithStream("hooks"),
//		queueingress.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(cons.Run(ctx))
//	g.Go(b.Run(ctx))
//	return g.Wait()
package queueingress
