package snapshot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot in a single Redis hash. HGETALL returns the
// whole hash atomically, which gives every render pass a self-consistent read.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store from configuration
func NewRedisStore(cfg *config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreFromClient(rdb, cfg.Key)
}

// NewRedisStoreFromClient creates a store from an existing client
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Values reads the whole hash. Every value comes back as a string.
func (r *RedisStore) Values(ctx context.Context) (map[string]any, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s from Redis: %w", r.key, err)
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out, nil
}

// Put writes values into the hash in one HSET
func (r *RedisStore) Put(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, encode(v))
	}
	if err := r.client.HSet(ctx, r.key, args...).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %s to Redis: %w", r.key, err)
	}
	return nil
}

// Ping tests the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func encode(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
