package source

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a tile source based on the source type.
func New(sourceType, tileURL, userAgent, mbtilesPath string, log *zap.Logger) (Source, error) {
	switch sourceType {
	case "http":
		log.Info("Using HTTP tile source", zap.String("url", tileURL))
		return NewHTTPSource(tileURL, userAgent)
	case "mbtiles":
		log.Info("Using MBTiles tile source", zap.String("path", mbtilesPath))
		return NewMBTilesSource(mbtilesPath)
	case "static":
		log.Info("Using static tile source")
		return NewStaticSource(), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s (supported: http, mbtiles, static)", sourceType)
	}
}
