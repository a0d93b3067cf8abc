// Package redis connects to Redis with retries and exposes a health probe.
//
// The returned *redis.Client (github.com/redis/go-redis/v9) is shared by the
// Redis-backed session provider and the preference storage:
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
// Errors wrap the driver error with a package sentinel through errors.Join,
// so callers match them with errors.Is.
package redis
