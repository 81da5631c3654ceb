package tilesindex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// A MetricsCollector also receives the walker's progress events, so it can be
// passed wherever a tileset.Observer is expected.
type MetricsCollector interface {
	// RecordTileset is called once per tileset document that was loaded.
	RecordTileset(uri string)

	// RecordTile is called after each b3dm payload was decoded.
	// features is the number of batch entries, err is nil if successful.
	RecordTile(uri string, features int, duration time.Duration, err error)

	// RecordTileSkipped is called for content that was skipped with a warning.
	RecordTileSkipped(uri string, reason string)

	// RecordIndex is called after each index artifact was written.
	RecordIndex(property string, indexType string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTileset(string)                             {}
func (NoopMetricsCollector) RecordTile(string, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordTileSkipped(string, string)                 {}
func (NoopMetricsCollector) RecordIndex(string, string, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TilesetCount    atomic.Int64
	TileCount       atomic.Int64
	TileErrors      atomic.Int64
	TileTotalNanos  atomic.Int64
	TileSkipped     atomic.Int64
	FeatureCount    atomic.Int64
	IndexCount      atomic.Int64
	IndexErrors     atomic.Int64
	IndexTotalNanos atomic.Int64
}

// RecordTileset implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileset(string) {
	b.TilesetCount.Add(1)
}

// RecordTile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTile(_ string, features int, duration time.Duration, err error) {
	b.TileCount.Add(1)
	b.TileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TileErrors.Add(1)
		return
	}
	b.FeatureCount.Add(int64(features))
}

// RecordTileSkipped implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileSkipped(string, string) {
	b.TileSkipped.Add(1)
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(_ string, _ string, duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TilesetCount:  b.TilesetCount.Load(),
		TileCount:     b.TileCount.Load(),
		TileErrors:    b.TileErrors.Load(),
		TileAvgNanos:  avg(b.TileTotalNanos.Load(), b.TileCount.Load()),
		TileSkipped:   b.TileSkipped.Load(),
		FeatureCount:  b.FeatureCount.Load(),
		IndexCount:    b.IndexCount.Load(),
		IndexErrors:   b.IndexErrors.Load(),
		IndexAvgNanos: avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TilesetCount  int64
	TileCount     int64
	TileErrors    int64
	TileAvgNanos  int64
	TileSkipped   int64
	FeatureCount  int64
	IndexCount    int64
	IndexErrors   int64
	IndexAvgNanos int64
}
