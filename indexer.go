package tilesindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/index"
	"github.com/hupe1980/tilesindex/internal/artifact"
	"github.com/hupe1980/tilesindex/internal/cache"
	"github.com/hupe1980/tilesindex/internal/resource"
	"github.com/hupe1980/tilesindex/internal/table"
	"github.com/hupe1980/tilesindex/manifest"
	"github.com/hupe1980/tilesindex/model"
	"github.com/hupe1980/tilesindex/tileset"
)

const (
	// ResultsDataName is the name of the aggregated feature table.
	ResultsDataName = "resultsData.csv"

	// ComputedHeightProperty is the property name under which an index is
	// fed the computed feature height when the batch table has no such
	// property.
	ComputedHeightProperty = "height"
)

// Indexer turns one tileset into index artifacts.
type Indexer struct {
	src  blobstore.BlobStore
	dst  blobstore.BlobStore
	cfg  *config.Indexes
	opts options
}

// New creates an Indexer reading tilesets and tiles from src and writing
// artifacts and the manifest to dst.
func New(src, dst blobstore.BlobStore, cfg *config.Indexes, optFns ...Option) *Indexer {
	return &Indexer{
		src:  src,
		dst:  dst,
		cfg:  cfg,
		opts: applyOptions(optFns),
	}
}

// Run indexes the tileset stored under tilesetName in the source store and
// returns the saved manifest.
func (ix *Indexer) Run(ctx context.Context, tilesetName string) (*manifest.IndexRoot, error) {
	start := time.Now()
	logger := ix.opts.logger.WithRunID(uuid.NewString()).WithTileset(tilesetName)

	root, rows, err := ix.run(ctx, logger, tilesetName)
	indexes := 0
	if root != nil {
		indexes = len(root.Indexes)
	}
	logger.LogRun(ctx, rows, indexes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (ix *Indexer) run(ctx context.Context, logger *Logger, tilesetName string) (*manifest.IndexRoot, int, error) {
	if ix.cfg == nil || ix.cfg.IDProperty == "" {
		return nil, 0, fmt.Errorf("%w: index config has no idProperty", model.ErrMalformedInput)
	}

	// Builders are created up front so an unknown type fails before the walk.
	builders := make([]index.Builder, 0, len(ix.cfg.Specs))
	for _, spec := range ix.cfg.Specs {
		b, err := index.NewBuilder(spec.Property, spec.Type,
			index.WithCodec(ix.opts.codec),
			index.WithLexicalFactory(ix.opts.lexical),
		)
		if err != nil {
			return nil, 0, err
		}
		builders = append(builders, b)
	}

	controller := resource.NewController(resource.Config{
		MaxWorkers:         int64(ix.opts.concurrency),
		MemoryLimitBytes:   ix.opts.memoryLimit,
		IOLimitBytesPerSec: ix.opts.ioLimit,
	})

	agg, err := ix.aggregate(ctx, logger, controller, tilesetName)
	if err != nil {
		return nil, 0, err
	}

	rows := ix.feed(agg.Features(), builders)

	sink := artifact.NewWriter(ix.dst,
		artifact.WithPrefix(ix.opts.prefix),
		artifact.WithCompression(ix.opts.compression),
		artifact.WithController(controller),
	)

	root := &manifest.IndexRoot{
		IDProperty: ix.cfg.IDProperty,
		Indexes:    make([]manifest.Entry, 0, len(builders)),
	}
	for fileID, b := range builders {
		def, err := ix.write(ctx, logger, sink, b, fileID)
		if err != nil {
			return nil, len(rows), err
		}
		root.Indexes = append(root.Indexes, manifest.Entry{Property: b.Property(), Definition: def})
	}

	data, err := table.Encode(ix.resultsHeader(), rows)
	if err != nil {
		return nil, len(rows), fmt.Errorf("encode %s: %w", ResultsDataName, err)
	}
	if root.ResultsDataURL, err = sink.Put(ctx, ResultsDataName, data); err != nil {
		return nil, len(rows), err
	}

	store := manifest.NewStore(ix.dst,
		manifest.WithCodec(ix.opts.codec),
		manifest.WithPrefix(ix.opts.prefix),
	)
	if err := store.Save(ctx, root); err != nil {
		return nil, len(rows), err
	}
	return root, len(rows), nil
}

// aggregate walks the tileset and deduplicates its features.
func (ix *Indexer) aggregate(ctx context.Context, logger *Logger, controller *resource.Controller, tilesetName string) (*Aggregator, error) {
	rc := newReadCache(ix.opts.readCache)
	walker := tileset.NewWalker(readerFor(ix.src, rc),
		tileset.WithCodec(ix.opts.codec),
		tileset.WithLogger(logger.Logger),
		tileset.WithController(controller),
		tileset.WithObserver(ix.opts.metricsCollector),
	)

	agg := NewAggregator(ix.cfg.IDProperty, ix.cfg.PositionProperties)
	err := walker.Walk(ctx, tilesetName, func(f model.TileFeature) error {
		if !agg.Add(f) {
			logger.LogFeatureDropped(ctx, f.URI, f.BatchID, ix.cfg.IDProperty)
		}
		return nil
	})
	logger.LogFeaturesRead(ctx, agg.Read(), agg.Len(), err)
	if rc != nil {
		hits, misses := rc.Stats()
		logger.DebugContext(ctx, "read cache", "hits", hits, "misses", misses)
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// feed adds every feature to the builders and returns the rows of the
// results table. The row index is the row id.
func (ix *Indexer) feed(features []model.Feature, builders []index.Builder) [][]any {
	rows := make([][]any, 0, len(features))
	for rowID, f := range features {
		row := make([]any, 0, 4+len(ix.cfg.ExtraProperties))
		row = append(row, f.ID)

		var height any
		if f.HasPosition {
			h := model.Round(f.Position.Height, 3)
			height = h
			row = append(row,
				model.Round(f.Position.Latitude, 5),
				model.Round(f.Position.Longitude, 5),
				h,
			)
		} else {
			row = append(row, nil, nil, nil)
		}
		for _, name := range ix.cfg.ExtraProperties {
			row = append(row, f.Properties[name])
		}
		rows = append(rows, row)

		for _, b := range builders {
			if v, ok := f.Properties[b.Property()]; ok {
				b.Add(rowID, v)
			} else if b.Property() == ComputedHeightProperty && height != nil {
				b.Add(rowID, height)
			}
		}
	}
	return rows
}

func (ix *Indexer) write(ctx context.Context, logger *Logger, sink index.Sink, b index.Builder, fileID int) (index.Definition, error) {
	start := time.Now()
	def, err := b.Write(ctx, sink, fileID)
	ix.opts.metricsCollector.RecordIndex(b.Property(), string(b.Type()), time.Since(start), err)

	url := ""
	if def != nil {
		url = definitionURL(def)
	}
	logger.LogIndexWritten(ctx, b.Property(), string(b.Type()), url, err)
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", b.Property(), err)
	}
	return def, nil
}

func (ix *Indexer) resultsHeader() []string {
	header := []string{ix.cfg.IDProperty, "latitude", "longitude", "height"}
	return append(header, ix.cfg.ExtraProperties...)
}

func definitionURL(def index.Definition) string {
	switch d := def.(type) {
	case *index.NumericDefinition:
		return d.URL
	case *index.TextDefinition:
		return d.URL
	}
	return ""
}

// readerFor adapts a blob store to the walker's Reader. Blobs requested
// more than once are served from c when it is not nil.
func readerFor(s blobstore.BlobStore, c cache.BlobCache) tileset.Reader {
	return tileset.ReaderFunc(func(ctx context.Context, name string) ([]byte, error) {
		if c != nil {
			if b, ok := c.Get(ctx, name); ok {
				return b, nil
			}
		}
		b, err := blobstore.ReadAll(ctx, s, name)
		if err != nil {
			return nil, err
		}
		if c != nil {
			c.Set(ctx, name, b)
		}
		return b, nil
	})
}

func newReadCache(capacity int64) cache.BlobCache {
	if capacity <= 0 {
		return nil
	}
	return cache.NewLRU(capacity, cache.NewSecondHit())
}
