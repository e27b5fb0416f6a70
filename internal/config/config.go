package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		Port int    `env:"PORT" envDefault:"8080"`
		Log  Logger `envPrefix:"LOG_"`

		Viewer Viewer   `envPrefix:"VIEWER_"`
		LOD    LOD      `envPrefix:"LOD_"`
		Source Source   `envPrefix:"SOURCE_"`
		Cache  CacheCfg `envPrefix:"CACHE_"`

		// Cadence of the streaming loop driven by cmd/server.
		LoadInterval time.Duration `env:"LOAD_INTERVAL" envDefault:"1s"`
		GCInterval   time.Duration `env:"GC_INTERVAL" envDefault:"10s"`
	}

	Logger struct {
		Level       string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Development bool   `env:"DEVELOPMENT" envDefault:"false"`
	}

	Viewer struct {
		Lon float64 `env:"LON" envDefault:"0" validate:"gte=-180,lte=180"`
		Lat float64 `env:"LAT" envDefault:"0" validate:"gte=-85.06,lte=85.06"`
	}

	LOD struct {
		LowResLevel int     `env:"LOWRES_LEVEL" envDefault:"8" validate:"gte=0,lte=30"`
		LowResRange float64 `env:"LOWRES_RANGE" envDefault:"1000000" validate:"gt=0"`
		HiResLevel  int     `env:"HIRES_LEVEL" envDefault:"13" validate:"gte=0,lte=30"`
		HiResRange  float64 `env:"HIRES_RANGE" envDefault:"10000" validate:"gt=0"`
	}

	Source struct {
		Type         string        `env:"TYPE" envDefault:"static" validate:"oneof=http mbtiles static"`
		TileURL      string        `env:"TILE_URL"`
		UserAgent    string        `env:"USER_AGENT" envDefault:"tilestream/1.0"`
		MBTilesPath  string        `env:"MBTILES_PATH"`
		FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	}

	CacheCfg struct {
		Type        string `env:"TYPE" envDefault:"memory" validate:"oneof=memory file sqlite redis disabled"`
		FileDir     string `env:"FILE_DIR" envDefault:"/data/cache"`
		MemoryTiles int    `env:"MEMORY_TILES" envDefault:"2000" validate:"gt=0"`
		SQLitePath  string `env:"SQLITE_PATH" envDefault:"tilecache.db"`
		Redis       Redis  `envPrefix:"REDIS_"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"24h"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
