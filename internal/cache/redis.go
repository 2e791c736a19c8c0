package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pulsenews/authoring-api/internal/config"
)

// RedisInvalidator deletes article listing keys from redis
type RedisInvalidator struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedis creates a redis-backed invalidator and verifies connectivity
func NewRedis(cfg *config.CacheConfig, log zerolog.Logger) (*RedisInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log = log.With().Str("component", "cache").Logger()
	log.Info().Str("addr", cfg.Addr).Msg("Connected to redis")

	return &RedisInvalidator{client: client, log: log}, nil
}

// InvalidateArticleLists removes the article list key and every paginated
// listing key.
func (c *RedisInvalidator) InvalidateArticleLists(ctx context.Context) error {
	if err := c.client.Del(ctx, ArticleListKey).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ArticleListKey, err)
	}

	iter := c.client.Scan(ctx, 0, articlePageMatchGlob, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan paginated listing keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete paginated listing keys: %w", err)
		}
	}

	c.log.Debug().Int("page_keys", len(keys)).Msg("Article listing caches invalidated")
	return nil
}

// Close closes the redis connection
func (c *RedisInvalidator) Close() error {
	return c.client.Close()
}
