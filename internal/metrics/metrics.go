package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TilesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_loaded_total",
		Help: "Tiles built by the loader and spliced into the tree",
	})

	TilesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_discarded_total",
		Help: "Freshly built tiles dropped because their node was pruned or already populated",
	})

	TilesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_evicted_total",
		Help: "Tiles released by garbage collection",
	})

	TileBuildErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tile_build_errors_total",
		Help: "Tile builds that failed",
	})

	TileBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilestream_tile_build_duration_seconds",
		Help:    "Duration of tile builds on the loader goroutine",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tilestream_load_queue_depth",
		Help: "Pending fetch tasks after the last queue rebuild",
	})

	TasksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_load_tasks_dropped_total",
		Help: "Fetch tasks dropped because the queue was full",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_byte_cache_hits_total",
		Help: "Tile byte cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_byte_cache_misses_total",
		Help: "Tile byte cache misses",
	})

	TilesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilestream_tiles_drawn_total",
		Help: "Tile draw calls issued by render traversals",
	})
)
