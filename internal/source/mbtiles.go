package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"tilestream/internal/geo"
)

// MBTilesSource reads tiles from a local MBTiles archive. MBTiles stores
// rows in TMS order, so the y index is flipped relative to the slippy-map
// scheme used everywhere else in this module.
type MBTilesSource struct {
	db *sql.DB
}

func NewMBTilesSource(path string) (*MBTilesSource, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}
	return &MBTilesSource{db: db}, nil
}

func (s *MBTilesSource) Fetch(ctx context.Context, id geo.TileID) ([]byte, error) {
	tmsY := (1 << id.Z) - 1 - id.Y

	const query = `SELECT tile_data
	FROM tiles
	WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id.Z, id.X, tmsY).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read tile %s: %w", id, err)
	}
	return data, nil
}

func (s *MBTilesSource) Close() error {
	return s.db.Close()
}
