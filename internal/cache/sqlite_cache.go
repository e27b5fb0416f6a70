package cache

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"tilestream/internal/geo"
)

//go:embed migrations
var migrations embed.FS

// SQLiteCache keeps tile bytes in a local sqlite database, surviving
// restarts without an external service.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteCache(path string, log *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	c := &SQLiteCache{
		db:     db,
		logger: log,
	}

	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tile cache: %w", err)
	}

	log.Info("sqlite cache initialized", zap.String("path", path))

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(c.db, "migrations")
}

func (c *SQLiteCache) Get(key geo.TileID) ([]byte, bool) {
	const query = `SELECT tile_data
	FROM tile_cache
	WHERE z = ? AND x = ? AND y = ?`

	var data []byte
	err := c.db.QueryRow(query, key.Z, key.X, key.Y).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("sqlite cache get failed", zap.Stringer("tile", key), zap.Error(err))
		}
		return nil, false
	}

	return data, true
}

func (c *SQLiteCache) Set(key geo.TileID, value []byte) {
	const query = `INSERT INTO tile_cache (z, x, y, tile_data)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(z, x, y) DO UPDATE SET tile_data = excluded.tile_data`

	if _, err := c.db.Exec(query, key.Z, key.X, key.Y, value); err != nil {
		c.logger.Warn("sqlite cache set failed", zap.Stringer("tile", key), zap.Error(err))
	}
}

func (c *SQLiteCache) Has(key geo.TileID) bool {
	const query = `SELECT 1 FROM tile_cache WHERE z = ? AND x = ? AND y = ?`

	var one int
	return c.db.QueryRow(query, key.Z, key.X, key.Y).Scan(&one) == nil
}

func (c *SQLiteCache) Clear() {
	if _, err := c.db.Exec(`DELETE FROM tile_cache`); err != nil {
		c.logger.Warn("sqlite cache clear failed", zap.Error(err))
	}
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
