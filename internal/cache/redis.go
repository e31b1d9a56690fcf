package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// CorpusPrefix namespaces every key derived from corpus state, so one
// scan invalidates them all after a write.
const CorpusPrefix = "corpus:"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err() // TTL 0 = no expiration
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// InvalidateCorpus drops every cached corpus-derived value. Called after
// any committed write; analytics and facet responses are rebuilt on the
// next read.
func (c *RedisCache) InvalidateCorpus(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, CorpusPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Key builds a corpus-scoped cache key from path segments.
func Key(parts ...string) string {
	key := CorpusPrefix
	for i, part := range parts {
		if i > 0 {
			key += ":"
		}
		key += part
	}
	return key
}
