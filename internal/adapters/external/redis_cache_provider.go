package external

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const (
	// keyPrefix scopes Clear to the keys written by the weather cache
	keyPrefix      = "weather:"
	clearBatchSize = 100
	connectTimeout = 5 * time.Second
)

// RedisCacheProviderAdapter stores cache entries as Redis strings.
// Expiry is delegated to key TTLs, so it needs no sweeping.
type RedisCacheProviderAdapter struct {
	client *redis.Client
}

var _ ports.CacheProvider = (*RedisCacheProviderAdapter)(nil)

func NewRedisCacheProviderAdapter(cfg *config.RedisConfig) (*RedisCacheProviderAdapter, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	adapter := &RedisCacheProviderAdapter{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := adapter.Ping(ctx); err != nil {
		_ = adapter.client.Close()
		return nil, err
	}
	return adapter, nil
}

func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	val, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		return nil, errors.NewNotFoundError("cache miss")
	case err != nil:
		return nil, redisError("get", err)
	}
	return val, nil
}

func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := checkEntry(key, value, ttl); err != nil {
		return err
	}
	return redisError("set", r.client.Set(ctx, key, value, ttl).Err())
}

func (r *RedisCacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return redisError("delete", r.client.Del(ctx, key).Err())
}

func (r *RedisCacheProviderAdapter) Exists(ctx context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}

	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, redisError("exists", err)
	}
	return count > 0, nil
}

// Clear removes every weather key and leaves other keys of the database alone.
// Keys are collected before deleting so the SCAN cursor never runs over a shrinking keyspace.
func (r *RedisCacheProviderAdapter) Clear(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", clearBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return redisError("clear", err)
	}

	for len(keys) > 0 {
		n := min(len(keys), clearBatchSize)
		if err := r.client.Del(ctx, keys[:n]...).Err(); err != nil {
			return redisError("clear", err)
		}
		keys = keys[n:]
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Close() error {
	return redisError("close", r.client.Close())
}

// Ping is used at startup and by the cache health check.
func (r *RedisCacheProviderAdapter) Ping(ctx context.Context) error {
	return redisError("ping", r.client.Ping(ctx).Err())
}

func redisError(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.NewExternalAPIError("redis "+op+" failed", err)
}
