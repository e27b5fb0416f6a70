// Package raster turns raw tile bytes into renderable tile payloads. It is
// the concrete tile factory behind the cache's loader: byte cache lookup,
// source fetch on miss, then decode and normalization through libvips.
package raster

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cshum/vipsgen/vips"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"tilestream/internal/cache"
	"tilestream/internal/geo"
	"tilestream/internal/metrics"
	"tilestream/internal/source"
	"tilestream/internal/tilecache"
)

const defaultTileSize = 256

// Builder implements tilecache.Builder. It is only ever called from the
// cache's loader goroutine, so no internal locking is needed.
type Builder struct {
	source       source.Source
	byteCache    cache.Cache
	tileSize     int
	fetchTimeout time.Duration
	logger       *zap.Logger
}

func New(src source.Source, byteCache cache.Cache, fetchTimeout time.Duration, logger *zap.Logger) *Builder {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Builder{
		source:       src,
		byteCache:    byteCache,
		tileSize:     defaultTileSize,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Build produces the tile payload for one cell. Cached entries hold
// already-normalized pixels and skip the decode entirely.
func (b *Builder) Build(id geo.TileID, bounds orb.Bound) (tilecache.Tile, error) {
	if data, ok := b.byteCache.Get(id); ok {
		metrics.CacheHits.Inc()
		return b.newTile(bounds, data), nil
	}
	metrics.CacheMisses.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), b.fetchTimeout)
	defer cancel()

	raw, err := b.source.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	b.logger.Debug("tile fetched", zap.Stringer("tile", id), zap.Int("bytes", len(raw)))

	data, err := b.normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}

	b.byteCache.Set(id, data)

	return b.newTile(bounds, data), nil
}

func (b *Builder) newTile(bounds orb.Bound, data []byte) *Tile {
	return &Tile{
		ref:    bounds.Center(),
		data:   data,
		width:  b.tileSize,
		height: b.tileSize,
	}
}

// normalize decodes the fetched bytes and re-exports them as a JPEG of
// exactly tileSize x tileSize, so every cached entry has a known shape.
func (b *Builder) normalize(raw []byte) ([]byte, error) {
	img, err := b.decode(raw)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	if img.Width() != b.tileSize || img.Height() != b.tileSize {
		scale := float64(b.tileSize) / float64(img.Width())

		resizeOpts := vips.DefaultResizeOptions()
		resizeOpts.Kernel = vips.KernelLanczos3
		if err := img.Resize(scale, resizeOpts); err != nil {
			return nil, fmt.Errorf("failed to resize: %w", err)
		}

		if img.Width() < b.tileSize || img.Height() < b.tileSize {
			embedOpts := vips.DefaultEmbedOptions()
			embedOpts.Extend = vips.ExtendBackground
			embedOpts.Background = []float64{221, 221, 221}
			if err := img.Embed(0, 0, b.tileSize, b.tileSize, embedOpts); err != nil {
				return nil, fmt.Errorf("failed to pad: %w", err)
			}
		}
	}

	jpegOpts := vips.DefaultJpegsaveBufferOptions()
	jpegOpts.Q = 82
	jpegOpts.Interlace = false

	data, err := img.JpegsaveBuffer(jpegOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	return data, nil
}

// decode picks a loader by sniffed content type.
func (b *Builder) decode(raw []byte) (*vips.Image, error) {
	switch contentType := http.DetectContentType(raw); contentType {
	case "image/jpeg":
		return vips.NewJpegloadBuffer(raw, vips.DefaultJpegloadBufferOptions())
	case "image/png":
		return vips.NewPngloadBuffer(raw, vips.DefaultPngloadBufferOptions())
	case "image/webp":
		return vips.NewWebploadBuffer(raw, vips.DefaultWebploadBufferOptions())
	default:
		return nil, fmt.Errorf("unsupported tile content type: %s", contentType)
	}
}
