package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tilestream/internal/cache"
	"tilestream/internal/geo"
	"tilestream/internal/source"
	"tilestream/internal/viewer"
)

// Handlers is the operational HTTP surface: health, metrics, raw tile
// passthrough and the streamed camera position.
type Handlers struct {
	logger    *zap.Logger
	validate  *validator.Validate
	tileCache cache.Cache
	tiles     source.Source
	camera    *viewer.Mobile
}

func New(logger *zap.Logger, tileCache cache.Cache, tiles source.Source, camera *viewer.Mobile) *Handlers {
	return &Handlers{
		logger:    logger,
		validate:  validator.New(),
		tileCache: tileCache,
		tiles:     tiles,
		camera:    camera,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (h *Handlers) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogging())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/tiles/:z/:x/:y", h.Tile)
	r.GET("/api/viewer", h.GetViewer)
	r.POST("/api/viewer", h.SetViewer)

	return r
}

func (h *Handlers) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		start := time.Now()

		c.Next()

		h.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Tile serves raw tile bytes through the byte cache, bypassing the
// quadtree: a debugging window into what the loader would fetch.
func (h *Handlers) Tile(c *gin.Context) {
	id, ok := h.parseTileID(c)
	if !ok {
		return
	}

	if data, found := h.tileCache.Get(id); found {
		c.Data(http.StatusOK, http.DetectContentType(data), data)
		return
	}

	data, err := h.tiles.Fetch(c.Request.Context(), id)
	if err == source.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "tile not found"})
		return
	}
	if err != nil {
		h.logger.Error("tile fetch failed", zap.Stringer("tile", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "tile fetch failed"})
		return
	}

	h.tileCache.Set(id, data)
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handlers) parseTileID(c *gin.Context) (geo.TileID, bool) {
	z, errZ := strconv.Atoi(c.Param("z"))
	x, errX := strconv.Atoi(c.Param("x"))
	y, errY := strconv.Atoi(c.Param("y"))
	if errZ != nil || errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "z, x and y should be integers"})
		return geo.TileID{}, false
	}
	if z < 0 || x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tile address out of range"})
		return geo.TileID{}, false
	}
	return geo.TileID{Z: z, X: x, Y: y}, true
}

type viewerRequest struct {
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
	Lat float64 `json:"lat" validate:"gte=-85.06,lte=85.06"`
}

// SetViewer moves the streamed camera. The next streaming tick rebuilds
// the wanted tile set around the new position.
func (h *Handlers) SetViewer(c *gin.Context) {
	var req viewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body should be {lon, lat}"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.camera.MoveTo(req.Lon, req.Lat)
	c.JSON(http.StatusOK, gin.H{"lon": req.Lon, "lat": req.Lat})
}

func (h *Handlers) GetViewer(c *gin.Context) {
	pos := h.camera.Position()
	c.JSON(http.StatusOK, gin.H{"lon": pos[0], "lat": pos[1]})
}
