package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tilestream/internal/geo"
)

// RedisCache keeps tile bytes in redis with a TTL, for sharing a warm
// cache between processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisCache(cfg RedisConfig, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour // default TTL
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}, nil
}

func (c *RedisCache) keyFor(k geo.TileID) string {
	return fmt.Sprintf("tile:%d:%d:%d", k.Z, k.X, k.Y)
}

func (c *RedisCache) Get(key geo.TileID) ([]byte, bool) {
	data, err := c.client.Get(context.Background(), c.keyFor(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", zap.Stringer("tile", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(key geo.TileID, value []byte) {
	err := c.client.Set(context.Background(), c.keyFor(key), value, c.ttl).Err()
	if err != nil {
		c.logger.Warn("redis set failed", zap.Stringer("tile", key), zap.Error(err))
	}
}

func (c *RedisCache) Has(key geo.TileID) bool {
	n, err := c.client.Exists(context.Background(), c.keyFor(key)).Result()
	return err == nil && n > 0
}

func (c *RedisCache) Clear() {
	if err := c.client.FlushDB(context.Background()).Err(); err != nil {
		c.logger.Warn("redis flush failed", zap.Error(err))
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
