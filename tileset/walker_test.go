package tileset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/internal/fixture"
	"github.com/hupe1980/tilesindex/internal/resource"
	"github.com/hupe1980/tilesindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFiles map[string][]byte

func (m memFiles) ReadFile(_ context.Context, name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return b, nil
}

type recorder struct {
	mu       sync.Mutex
	tilesets []string
	tiles    []string
	skipped  []string
}

func (r *recorder) RecordTileset(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tilesets = append(r.tilesets, uri)
}

func (r *recorder) RecordTile(uri string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiles = append(r.tiles, uri)
}

func (r *recorder) RecordTileSkipped(uri, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, uri)
}

// namedTile is a b3dm without a model whose features carry an id and a label.
func namedTile(label string, ids ...string) []byte {
	idCol := make([]any, len(ids))
	labels := make([]any, len(ids))
	for i, id := range ids {
		idCol[i] = id
		labels[i] = label
	}
	return fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": len(ids)},
		BatchTable:   map[string]any{"id": idCol, "label": labels},
	}.B3DM()
}

func walkAll(t *testing.T, w *Walker, root string) []model.TileFeature {
	t.Helper()
	var out []model.TileFeature
	require.NoError(t, w.Walk(t.Context(), root, func(f model.TileFeature) error {
		out = append(out, f)
		return nil
	}))
	return out
}

func TestWalkSingleTile(t *testing.T) {
	m, rtc := fixture.Cluster(7.5, 46.9, 10, 20)
	files := memFiles{
		"tileset.json": []byte(`{"asset":{"version":"1.0","gltfUpAxis":"Z"},"root":{"content":{"uri":"0.b3dm"}}}`),
		"0.b3dm": fixture.Tile{
			FeatureTable: map[string]any{"BATCH_LENGTH": 2, "RTC_CENTER": rtc},
			BatchTable:   map[string]any{"height": []any{10, 20}},
			Model:        m.GLB(),
		}.B3DM(),
	}

	features := walkAll(t, NewWalker(files), "tileset.json")
	require.Len(t, features, 2)

	for i, want := range []float64{10, 20} {
		f := features[i]
		assert.Equal(t, "0.b3dm", f.URI)
		assert.Equal(t, i, f.BatchID)
		assert.Equal(t, want, f.Properties["height"])
		require.True(t, f.HasPosition)
		assert.InDelta(t, 7.5, f.Position.Longitude, 1e-6)
		assert.InDelta(t, 46.9, f.Position.Latitude, 1e-6)
		assert.InDelta(t, want, f.Position.Height, 1e-3)
	}
}

func TestWalkModelRTCAndUpAxis(t *testing.T) {
	m, rtc := fixture.Cluster(-122.4, 37.8, 15)
	// Express the model Y-up: swap local Y and Z so the Y-up rotation restores it.
	for i, v := range m.Vertices {
		m.Vertices[i] = fixture.Vertex{X: v.X, Y: v.Z, Z: -v.Y, BatchID: v.BatchID}
	}
	m.RTCCenter = rtc

	files := memFiles{
		"tileset.json": []byte(`{"root":{"content":{"uri":"0.b3dm"}}}`),
		"0.b3dm": fixture.Tile{
			FeatureTable: map[string]any{"BATCH_LENGTH": 1},
			Model:        m.GLB(),
		}.B3DM(),
	}

	features := walkAll(t, NewWalker(files), "tileset.json")
	require.Len(t, features, 1)
	assert.InDelta(t, -122.4, features[0].Position.Longitude, 1e-6)
	assert.InDelta(t, 37.8, features[0].Position.Latitude, 1e-6)
	assert.InDelta(t, 15, features[0].Position.Height, 1e-3)
}

func TestWalkDefersExternalTilesets(t *testing.T) {
	files := memFiles{
		"tileset.json": []byte(`{"root":{"content":{"uri":"coarse.b3dm"},"children":[
			{"content":{"uri":"fine/tileset.json"}},
			{"content":{"uri":"sibling.b3dm"}}
		]}}`),
		"coarse.b3dm":       namedTile("coarse", "X", "Y"),
		"sibling.b3dm":      namedTile("sibling", "Z"),
		"fine/tileset.json": []byte(`{"root":{"content":{"url":"x.b3dm"}}}`),
		"fine/x.b3dm":       namedTile("fine", "X"),
	}

	rec := &recorder{}
	features := walkAll(t, NewWalker(files, WithObserver(rec), WithController(resource.NewController(resource.Config{MaxWorkers: 4}))), "tileset.json")

	var order []string
	for _, f := range features {
		order = append(order, fmt.Sprintf("%s:%s", f.Properties["id"], f.Properties["label"]))
	}
	assert.Equal(t, []string{"X:coarse", "Y:coarse", "Z:sibling", "X:fine"}, order)
	assert.Equal(t, []string{"tileset.json", "fine/tileset.json"}, rec.tilesets)
	assert.ElementsMatch(t, []string{"coarse.b3dm", "sibling.b3dm", "fine/x.b3dm"}, rec.tiles)
}

func TestWalkDepthFirstOrder(t *testing.T) {
	files := memFiles{
		"tileset.json": []byte(`{"root":{"children":[
			{"content":{"uri":"a.b3dm"},"children":[{"content":{"uri":"a1.b3dm"}}]},
			{"content":{"uri":"b.b3dm"}}
		]}}`),
		"a.b3dm":  namedTile("a", "1"),
		"a1.b3dm": namedTile("a1", "2"),
		"b.b3dm":  namedTile("b", "3"),
	}

	features := walkAll(t, NewWalker(files), "tileset.json")
	var uris []string
	for _, f := range features {
		uris = append(uris, f.URI)
	}
	assert.Equal(t, []string{"a.b3dm", "a1.b3dm", "b.b3dm"}, uris)
}

func TestWalkExternalTilesetInheritsTransform(t *testing.T) {
	center := geom.WGS84.CartographicToCartesian(geom.Cartographic{
		Longitude: geom.ToRadians(2.35),
		Latitude:  geom.ToRadians(48.85),
	})
	files := memFiles{
		"tileset.json": []byte(fmt.Sprintf(`{"root":{"transform":[1,0,0,0,0,1,0,0,0,0,1,0,%v,%v,%v,1],
			"children":[{"content":{"uri":"ext.json"}}]}}`, center.X, center.Y, center.Z)),
		"ext.json": []byte(`{"root":{"boundingVolume":{"box":[0,0,0,1,0,0,0,1,0,0,0,1]},"content":{"uri":"t.b3dm"}}}`),
		"t.b3dm":   namedTile("t", "A"),
	}

	features := walkAll(t, NewWalker(files), "tileset.json")
	require.Len(t, features, 1)
	require.True(t, features[0].HasPosition)
	assert.InDelta(t, 2.35, features[0].Position.Longitude, 1e-9)
	assert.InDelta(t, 48.85, features[0].Position.Latitude, 1e-9)
}

func TestWalkSkipsRecoverableContent(t *testing.T) {
	pnts := append([]byte("pnts"), make([]byte, 24)...)
	files := memFiles{
		"tileset.json": []byte(`{"root":{"children":[
			{"content":{"uri":"nobatch.b3dm"}},
			{"content":{"uri":"points.pnts"}},
			{"content":{"uri":"https://example.com/remote.b3dm"}},
			{"content":{"uri":"missing.b3dm"}},
			{"content":{"uri":"broken.json"}},
			{"content":{"uri":"ok.b3dm"}}
		]}}`),
		"nobatch.b3dm": fixture.Tile{FeatureTable: map[string]any{}}.B3DM(),
		"points.pnts":  pnts,
		"broken.json":  []byte(`{"asset":{}}`),
		"ok.b3dm":      namedTile("ok", "1"),
	}

	rec := &recorder{}
	features := walkAll(t, NewWalker(files, WithObserver(rec)), "tileset.json")
	require.Len(t, features, 1)
	assert.Equal(t, "ok.b3dm", features[0].URI)
	assert.ElementsMatch(t, []string{
		"nobatch.b3dm", "points.pnts", "https://example.com/remote.b3dm", "missing.b3dm", "broken.json",
	}, rec.skipped)
}

func TestWalkFatalErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		err := NewWalker(memFiles{}).Walk(t.Context(), "tileset.json", func(model.TileFeature) error { return nil })
		assert.ErrorIs(t, err, fs.ErrNotExist)
		var te *TileError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "tileset.json", te.URI)
	})

	t.Run("malformed root", func(t *testing.T) {
		files := memFiles{"tileset.json": []byte(`{}`)}
		err := NewWalker(files).Walk(t.Context(), "tileset.json", func(model.TileFeature) error { return nil })
		assert.ErrorIs(t, err, model.ErrMalformedInput)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		data := namedTile("x", "1")
		data[20] = 0xff // batch table JSON length now overflows
		files := memFiles{
			"tileset.json": []byte(`{"root":{"content":{"uri":"bad.b3dm"}}}`),
			"bad.b3dm":     data,
		}
		err := NewWalker(files).Walk(t.Context(), "tileset.json", func(model.TileFeature) error { return nil })
		assert.ErrorIs(t, err, model.ErrBinaryFormat)
		var te *TileError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "bad.b3dm", te.URI)
	})

	t.Run("visitor error", func(t *testing.T) {
		files := memFiles{
			"tileset.json": []byte(`{"root":{"content":{"uri":"a.b3dm"}}}`),
			"a.b3dm":       namedTile("a", "1", "2"),
		}
		stop := errors.New("stop")
		calls := 0
		err := NewWalker(files).Walk(t.Context(), "tileset.json", func(model.TileFeature) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := NewWalker(memFiles{}).Walk(ctx, "tileset.json", func(model.TileFeature) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
