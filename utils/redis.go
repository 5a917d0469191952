package utils

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// GetRedisClient creates a Redis client and verifies the connection.
func GetRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
