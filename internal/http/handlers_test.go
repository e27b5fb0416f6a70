package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tilestream/internal/cache"
	"tilestream/internal/geo"
	"tilestream/internal/source"
	"tilestream/internal/viewer"
)

func newTestRouter(t *testing.T) (*gin.Engine, *source.StaticSource, cache.Cache, *viewer.Mobile) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := source.NewStaticSource()
	byteCache := cache.NewMemoryCache(10)
	camera := viewer.New(0, 0)

	h := New(zap.NewNop(), byteCache, src, camera)
	return h.Router(), src, byteCache, camera
}

func TestHealthz(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTileServesAndCaches(t *testing.T) {
	router, src, byteCache, _ := newTestRouter(t)

	id := geo.TileID{Z: 4, X: 2, Y: 3}
	src.Put(id, []byte("tile-bytes"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tiles/4/2/3", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tile-bytes", w.Body.String())
	assert.True(t, byteCache.Has(id))
}

func TestTileNotFound(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tiles/4/2/3", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTileRejectsBadAddress(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/tiles/a/2/3",
		"/api/tiles/2/9/0", // x outside 2^z
		"/api/tiles/2/-1/0",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equalf(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestSetViewer(t *testing.T) {
	router, _, _, camera := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/viewer", strings.NewReader(`{"lon": 13.4, "lat": 52.5}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	pos := camera.Position()
	assert.Equal(t, 13.4, pos[0])
	assert.Equal(t, 52.5, pos[1])
}

func TestSetViewerRejectsOutOfRange(t *testing.T) {
	router, _, _, camera := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/viewer", strings.NewReader(`{"lon": 400, "lat": 0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0.0, camera.Position()[0])
}
