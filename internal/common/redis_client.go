package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/logging"
)

// RedisClientProvider hands out a shared Redis client.
type RedisClientProvider interface {
	Client() *redis.Client
}

type redisClient struct {
	client *redis.Client
}

func (r *redisClient) Client() *redis.Client { return r.client }

func NewRedisClient(opts config.RedisOptions) RedisClientProvider {
	redisDB := 0 // Default DB

	addr := fmt.Sprintf("%s:%s", opts.Host, opts.Port)
	logging.Info("Initializing Redis client", "addr", addr, "db", redisDB)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           redisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Error("Failed to ping Redis", "error", err)
		return &redisClient{client: client} // pool will keep trying to reconnect
	}

	logging.Info("Successfully connected to Redis")
	return &redisClient{client: client}
}
