package tilesindex

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/internal/resource"
	"github.com/hupe1980/tilesindex/internal/table"
	"github.com/hupe1980/tilesindex/model"
	"github.com/hupe1980/tilesindex/tileset"
)

// Dump writes the batch properties of every feature in the tileset as CSV,
// without deduplication, and returns the number of rows written.
//
// The header holds the sorted property names of the first feature; later
// rows are written in that column order. An empty tileset writes nothing.
func Dump(ctx context.Context, src blobstore.BlobStore, tilesetName string, w io.Writer, optFns ...Option) (int, error) {
	o := applyOptions(optFns)
	walker := tileset.NewWalker(readerFor(src, newReadCache(o.readCache)),
		tileset.WithCodec(o.codec),
		tileset.WithLogger(o.logger.Logger),
		tileset.WithController(resource.NewController(resource.Config{
			MaxWorkers:         int64(o.concurrency),
			MemoryLimitBytes:   o.memoryLimit,
			IOLimitBytesPerSec: o.ioLimit,
		})),
		tileset.WithObserver(o.metricsCollector),
	)

	var (
		tw     *table.Writer
		header []string
		row    []any
		n      int
	)
	err := walker.Walk(ctx, tilesetName, func(f model.TileFeature) error {
		if tw == nil {
			header = propertyNames(f.Properties)
			tw = table.NewWriter(w, header)
			row = make([]any, len(header))
		}
		for i, name := range header {
			row[i] = f.Properties[name]
		}
		if err := tw.WriteRow(row...); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return n, fmt.Errorf("dump: %w", err)
		}
	}
	return n, nil
}

func propertyNames(p model.Properties) []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
