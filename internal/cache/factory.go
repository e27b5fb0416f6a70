package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// Config selects and parameterizes a cache backend.
type Config struct {
	Type        string
	FileDir     string
	MemoryTiles int
	SQLitePath  string
	Redis       RedisConfig
}

// New creates a cache instance based on the cache type
func New(cfg Config, log *zap.Logger) (Cache, error) {
	switch cfg.Type {
	case "memory":
		log.Info("Using memory cache", zap.Int("max_tiles", cfg.MemoryTiles))
		return NewMemoryCache(cfg.MemoryTiles), nil
	case "file":
		log.Info("Using file cache", zap.String("cache_dir", cfg.FileDir))
		return NewFileCache(cfg.FileDir)
	case "sqlite":
		return NewSQLiteCache(cfg.SQLitePath, log)
	case "redis":
		log.Info("Using redis cache", zap.String("addr", cfg.Redis.Addr))
		return NewRedisCache(cfg.Redis, log)
	case "disabled":
		log.Info("Cache disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: memory, file, sqlite, redis, disabled)", cfg.Type)
	}
}
