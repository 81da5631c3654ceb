package tilesindex

import (
	"log/slog"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/internal/compress"
	"github.com/hupe1980/tilesindex/lexical"
)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	concurrency      int
	memoryLimit      int64
	ioLimit          int64
	compression      compress.Type
	lexical          lexical.Factory
	prefix           string
	readCache        int64
}

// Option configures Indexer behavior.
type Option func(*options)

// WithCodec configures the codec used for every JSON document read or
// written.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring a run.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tilesindex.BasicMetricsCollector{}
//	ix := tilesindex.New(src, dst, cfg, tilesindex.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Tiles: %d, skipped: %d\n", stats.TileCount, stats.TileSkipped)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for a run.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tilesindex.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	ix := tilesindex.New(src, dst, cfg, tilesindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(nil, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}

// WithConcurrency bounds the number of tiles decoded at once.
// Values <= 0 use GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMemoryLimit bounds the tile payload bytes held by in-flight decodes.
// 0 disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles reads and artifact writes to bytes per second.
// 0 disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithCompression compresses every artifact except the manifest.
// Artifact URLs get the matching suffix, for example "0.csv.zst".
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithLexicalFactory replaces the full-text index used by text indexes.
func WithLexicalFactory(f lexical.Factory) Option {
	return func(o *options) {
		o.lexical = f
	}
}

// WithReadCache keeps up to capacity bytes of blobs that are requested more
// than once, such as glTF buffers shared by many tiles. 0 disables it.
func WithReadCache(capacity int64) Option {
	return func(o *options) {
		o.readCache = capacity
	}
}

// WithOutputPrefix writes every artifact and the manifest below prefix in
// the destination store.
func WithOutputPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
