package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent or its payload
// cannot be decoded.
var ErrMiss = errors.New("cache miss")

// ConnectRedis initializes and returns a Redis client instance.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	fmt.Println("Successfully connected to Redis!")
	return rdb, nil
}

// DisconnectRedis closes the Redis client connection.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	fmt.Println("Redis connection closed.")
	return nil
}

// GetJSON loads the JSON value stored under key into out. A missing key or
// an undecodable payload both count as ErrMiss; other errors are Redis
// failures the caller may want to log.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, out interface{}) error {
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache read for %s failed: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return ErrMiss
	}
	return nil
}

// SetJSON stores v under key as JSON with the given TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v interface{}, ttl time.Duration) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode for %s failed: %w", key, err)
	}
	if err := rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("cache write for %s failed: %w", key, err)
	}
	return nil
}

// Invalidate drops the given keys. Safe to call for keys that do not exist.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	return nil
}
