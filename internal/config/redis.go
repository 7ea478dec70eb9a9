package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil without error when REDIS_ADDR is not configured.
func OpenRedis(ctx context.Context, env Env) (*redis.Client, error) {
	addr := strings.TrimSpace(env.RedisAddr)
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
