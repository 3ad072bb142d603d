package redisinfra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Open connects to Redis and verifies the connection with a ping.
// Caller must call Close when done.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
