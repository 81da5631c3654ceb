package tilesindex_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilesindex"
	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/index"
	"github.com/hupe1980/tilesindex/internal/artifact"
	"github.com/hupe1980/tilesindex/internal/compress"
	"github.com/hupe1980/tilesindex/internal/fixture"
	"github.com/hupe1980/tilesindex/manifest"
)

const towersConfig = `{
	"idProperty": "id",
	"indexes": {
		"height": {"type": "numeric"},
		"kind": {"type": "enum"},
		"name": {"type": "text"}
	},
	"extraProperties": ["name"]
}`

// towers stores a single-tile tileset with two features at 7.5°E 46.9°N,
// 10 and 20 units tall.
func towers(t *testing.T) *blobstore.MemoryStore {
	t.Helper()
	m, rtc := fixture.Cluster(7.5, 46.9, 10, 20)
	src := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, src.Put(ctx, "tileset.json",
		[]byte(`{"asset":{"version":"1.0","gltfUpAxis":"Z"},"root":{"content":{"uri":"tiles/0.b3dm"}}}`)))
	require.NoError(t, src.Put(ctx, "tiles/0.b3dm", fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 2, "RTC_CENTER": rtc},
		BatchTable: map[string]any{
			"id":   []any{"a", "b"},
			"kind": []any{"tower", "hall"},
			"name": []any{"Old Tower", "Town Hall"},
		},
		Model: m.GLB(),
	}.B3DM()))
	return src
}

func parseConfig(t *testing.T, doc string) *config.Indexes {
	t.Helper()
	cfg, err := config.ParseIndexes([]byte(doc), codec.Default)
	require.NoError(t, err)
	return cfg
}

func TestIndexerRun(t *testing.T) {
	dst := blobstore.NewMemoryStore()
	metrics := &tilesindex.BasicMetricsCollector{}

	ix := tilesindex.New(towers(t), dst, parseConfig(t, towersConfig),
		tilesindex.WithMetricsCollector(metrics),
	)
	root, err := ix.Run(t.Context(), "tileset.json")
	require.NoError(t, err)

	assert.Equal(t, "resultsData.csv", root.ResultsDataURL)
	assert.Equal(t, "id", root.IDProperty)
	require.Len(t, root.Indexes, 3)
	assert.Equal(t, "height", root.Indexes[0].Property)
	assert.Equal(t, "kind", root.Indexes[1].Property)
	assert.Equal(t, "name", root.Indexes[2].Property)

	assert.Equal(t,
		"id,latitude,longitude,height,name\r\n"+
			"a,46.9,7.5,10,Old Tower\r\n"+
			"b,46.9,7.5,20,Town Hall\r\n",
		string(dst.Get("resultsData.csv")))

	height, ok := root.Index("height")
	require.True(t, ok)
	num, ok := height.(*index.NumericDefinition)
	require.True(t, ok)
	assert.Equal(t, index.Range{Min: 10, Max: 20}, num.Range)
	assert.Equal(t, "0.csv", num.URL)
	assert.Equal(t, "dataRowId,value\r\n0,10\r\n1,20\r\n", string(dst.Get("0.csv")))

	kind, ok := root.Index("kind")
	require.True(t, ok)
	enum, ok := kind.(*index.EnumDefinition)
	require.True(t, ok)
	assert.Equal(t, []string{"tower", "hall"}, enum.Keys)
	assert.Equal(t, index.EnumValue{Count: 1, URL: "1-0.csv"}, enum.Values["tower"])
	assert.Equal(t, "dataRowId\r\n1\r\n", string(dst.Get("1-1.csv")))

	assert.NotEmpty(t, dst.Get("2.json"))

	loaded, err := manifest.NewStore(dst).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, root.ResultsDataURL, loaded.ResultsDataURL)
	assert.Len(t, loaded.Indexes, 3)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.TilesetCount)
	assert.Equal(t, int64(1), stats.TileCount)
	assert.Equal(t, int64(2), stats.FeatureCount)
	assert.Equal(t, int64(3), stats.IndexCount)
	assert.Zero(t, stats.IndexErrors)
}

func TestIndexerRun_LevelOfDetailDedup(t *testing.T) {
	ctx := context.Background()
	src := blobstore.NewMemoryStore()
	coarse := fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 2},
		BatchTable:   map[string]any{"id": []any{"X", "Y"}, "rev": []any{"coarse", "coarse"}},
	}.B3DM()
	fine := fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 1},
		BatchTable:   map[string]any{"id": []any{"X"}, "rev": []any{"fine"}},
	}.B3DM()
	require.NoError(t, src.Put(ctx, "tileset.json", []byte(`{"root":{
		"content":{"uri":"coarse.b3dm"},
		"children":[{"content":{"uri":"detail/tileset.json"}}]}}`)))
	require.NoError(t, src.Put(ctx, "coarse.b3dm", coarse))
	require.NoError(t, src.Put(ctx, "detail/tileset.json", []byte(`{"root":{"content":{"uri":"fine.b3dm"}}}`)))
	require.NoError(t, src.Put(ctx, "detail/fine.b3dm", fine))

	dst := blobstore.NewMemoryStore()
	cfg := parseConfig(t, `{"idProperty":"id","indexes":{"rev":{"type":"enum"}},"extraProperties":["rev"]}`)
	root, err := tilesindex.New(src, dst, cfg).Run(ctx, "tileset.json")
	require.NoError(t, err)

	assert.Equal(t,
		"id,latitude,longitude,height,rev\r\n"+
			"X,,,,fine\r\n"+
			"Y,,,,coarse\r\n",
		string(dst.Get("resultsData.csv")))

	def, ok := root.Index("rev")
	require.True(t, ok)
	enum := def.(*index.EnumDefinition)
	assert.Equal(t, []string{"fine", "coarse"}, enum.Keys)
}

func TestIndexerRun_PositionOverrides(t *testing.T) {
	ctx := context.Background()
	src := blobstore.NewMemoryStore()
	require.NoError(t, src.Put(ctx, "tileset.json", []byte(`{"root":{"content":{"uri":"0.b3dm"}}}`)))
	require.NoError(t, src.Put(ctx, "0.b3dm", fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 3},
		BatchTable: map[string]any{
			"id":  []any{"p", "q", "r"},
			"lat": []any{"-33.123456", "", 0},
			"lon": []any{151.2, "", 0},
			"alt": []any{12.3456, nil, "high"},
		},
	}.B3DM()))

	dst := blobstore.NewMemoryStore()
	cfg := parseConfig(t, `{"idProperty":"id","indexes":{"height":{"type":"numeric"}},
		"positionProperties":{"latitude":"lat","longitude":"lon","height":"alt"}}`)
	_, err := tilesindex.New(src, dst, cfg).Run(ctx, "tileset.json")
	require.NoError(t, err)

	assert.Equal(t,
		"id,latitude,longitude,height\r\n"+
			"p,-33.12346,151.2,12.346\r\n"+
			"q,,,\r\n"+
			"r,,,\r\n",
		string(dst.Get("resultsData.csv")))
	assert.Equal(t, "dataRowId,value\r\n0,12.346\r\n", string(dst.Get("0.csv")))
}

func TestIndexerRun_Compression(t *testing.T) {
	dst := blobstore.NewMemoryStore()
	root, err := tilesindex.New(towers(t), dst, parseConfig(t, towersConfig),
		tilesindex.WithCompression(compress.ZSTD),
		tilesindex.WithOutputPrefix("out"),
	).Run(t.Context(), "tileset.json")
	require.NoError(t, err)

	assert.Equal(t, "resultsData.csv.zst", root.ResultsDataURL)
	assert.NotNil(t, dst.Get("out/indexRoot.json"))

	data, err := artifact.Read(t.Context(), dst, "out/"+root.ResultsDataURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,latitude,longitude,height,name\r\n"))

	loaded, err := manifest.NewStore(dst, manifest.WithPrefix("out")).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "resultsData.csv.zst", loaded.ResultsDataURL)
}

func TestIndexerRun_Errors(t *testing.T) {
	t.Run("missing root tileset", func(t *testing.T) {
		_, err := tilesindex.New(blobstore.NewMemoryStore(), blobstore.NewMemoryStore(),
			parseConfig(t, towersConfig)).Run(t.Context(), "tileset.json")
		require.Error(t, err)
		var te *tilesindex.TileError
		assert.True(t, errors.As(err, &te))
	})

	t.Run("empty numeric index", func(t *testing.T) {
		cfg := parseConfig(t, `{"idProperty":"id","indexes":{"name":{"type":"numeric"}}}`)
		_, err := tilesindex.New(towers(t), blobstore.NewMemoryStore(), cfg).Run(t.Context(), "tileset.json")
		assert.ErrorIs(t, err, tilesindex.ErrEmptyIndex)
	})

	t.Run("no id property", func(t *testing.T) {
		_, err := tilesindex.New(towers(t), blobstore.NewMemoryStore(), &config.Indexes{}).Run(t.Context(), "tileset.json")
		assert.ErrorIs(t, err, tilesindex.ErrMalformedInput)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := tilesindex.New(towers(t), blobstore.NewMemoryStore(), parseConfig(t, towersConfig)).Run(ctx, "tileset.json")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIndexerRun_LogsDroppedFeatures(t *testing.T) {
	ctx := context.Background()
	src := blobstore.NewMemoryStore()
	require.NoError(t, src.Put(ctx, "tileset.json", []byte(`{"root":{"content":{"uri":"0.b3dm"}}}`)))
	require.NoError(t, src.Put(ctx, "0.b3dm", fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 2},
		BatchTable:   map[string]any{"id": []any{"a", nil}, "kind": []any{"x", "y"}},
	}.B3DM()))

	var buf bytes.Buffer
	cfg := parseConfig(t, `{"idProperty":"id","indexes":{"kind":{"type":"enum"}}}`)
	dst := blobstore.NewMemoryStore()
	_, err := tilesindex.New(src, dst, cfg,
		tilesindex.WithLogger(tilesindex.NewJSONLogger(&buf, slog.LevelDebug)),
	).Run(ctx, "tileset.json")
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"feature without id dropped"`)
	assert.Contains(t, logs, `"msg":"indexing completed"`)
	assert.Contains(t, logs, `"run_id":`)
	assert.Equal(t, "id,latitude,longitude,height\r\na,,,\r\n", string(dst.Get("resultsData.csv")))
}
