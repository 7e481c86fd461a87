// Package config provides type-safe environment variable loading with
// per-type caching. It parses `env` struct tags via the caarlos0/env library
// and loads a local .env file on first use.
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each configuration type is loaded once per application lifetime; repeated
// loads of the same type return the cached value.
package config
