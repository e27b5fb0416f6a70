package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"

	"tilestream/internal/cache"
	"tilestream/internal/config"
	httphandlers "tilestream/internal/http"
	"tilestream/internal/logger"
	"tilestream/internal/raster"
	"tilestream/internal/source"
	"tilestream/internal/tilecache"
	"tilestream/internal/viewer"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	// Route vips diagnostics into the process logger; drop info noise.
	vips.SetLogging(func(domain string, level vips.LogLevel, message string) {
		if level >= vips.LogLevelError {
			log.Error("vips", zap.String("domain", domain), zap.String("message", message))
		} else if level >= vips.LogLevelWarning {
			log.Warn("vips", zap.String("domain", domain), zap.String("message", message))
		}
	}, vips.LogLevelError)

	vips.Startup(nil)
	defer vips.Shutdown()

	log.Info("Starting tilestream server",
		zap.Int("port", cfg.Port),
		zap.String("source", cfg.Source.Type),
		zap.String("cache", cfg.Cache.Type),
	)

	tiles, err := source.New(cfg.Source.Type, cfg.Source.TileURL, cfg.Source.UserAgent, cfg.Source.MBTilesPath, log)
	if err != nil {
		log.Fatal("Failed to initialize tile source", zap.Error(err))
	}
	defer tiles.Close()

	byteCache, err := cache.New(cache.Config{
		Type:        cfg.Cache.Type,
		FileDir:     cfg.Cache.FileDir,
		MemoryTiles: cfg.Cache.MemoryTiles,
		SQLitePath:  cfg.Cache.SQLitePath,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.Redis.TTL,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	builder := raster.New(tiles, byteCache, cfg.Source.FetchTimeout, log)

	manager, err := tilecache.New(builder, tilecache.Options{
		LowResLevel: cfg.LOD.LowResLevel,
		LowResRange: cfg.LOD.LowResRange,
		HiResLevel:  cfg.LOD.HiResLevel,
		HiResRange:  cfg.LOD.HiResRange,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tile manager", zap.Error(err))
	}

	camera := viewer.New(cfg.Viewer.Lon, cfg.Viewer.Lat)

	handlers := httphandlers.New(log, byteCache, tiles, camera)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.Router(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan struct{})
	go streamLoop(manager, camera, cfg.LoadInterval, cfg.GCInterval, stop)

	log.Info("Server started", zap.Int("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	close(stop)
	manager.Close()

	log.Info("Server stopped")
}

// streamLoop keeps the cache populated around the camera: a locality
// rebuild every load tick, a collection sweep every gc tick.
func streamLoop(manager *tilecache.Manager, camera *viewer.Mobile, loadEvery, gcEvery time.Duration, stop <-chan struct{}) {
	loadTick := time.NewTicker(loadEvery)
	defer loadTick.Stop()
	gcTick := time.NewTicker(gcEvery)
	defer gcTick.Stop()

	for {
		select {
		case <-loadTick.C:
			manager.LoadLocality(camera, 0)
		case <-gcTick.C:
			manager.GarbageCollect()
		case <-stop:
			return
		}
	}
}
