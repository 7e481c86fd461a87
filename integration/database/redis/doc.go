// Package redis provides Redis client initialization and health checking
// for the queue dispatcher and the queue ingress consumer.
//
// Connect validates the connection URL, establishes a client with retry
// logic, and verifies connectivity with a ping before returning. Healthcheck
// returns a probe function for monitoring.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	b := bus.New(bus.WithQueueClient(cfg.ConnectionURL, client))
package redis
