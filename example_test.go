package tilesindex_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/tilesindex"
	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/internal/fixture"
)

// Example_run indexes a one-tile tileset held in memory.
func Example_run() {
	ctx := context.Background()

	src := blobstore.NewMemoryStore()
	_ = src.Put(ctx, "tileset.json", []byte(`{"root":{"content":{"uri":"0.b3dm"}}}`))
	_ = src.Put(ctx, "0.b3dm", fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 2},
		BatchTable:   map[string]any{"id": []any{"a", "b"}, "floors": []any{3, 12}},
	}.B3DM())

	cfg, err := config.ParseIndexes([]byte(`{"idProperty":"id","indexes":{"floors":{"type":"numeric"}}}`), codec.Default)
	if err != nil {
		log.Fatal(err)
	}

	dst := blobstore.NewMemoryStore()
	root, err := tilesindex.New(src, dst, cfg).Run(ctx, "tileset.json")
	if err != nil {
		log.Fatal(err)
	}

	data, _ := root.MarshalJSON()
	fmt.Println(string(data))
	// Output: {"resultsDataUrl":"resultsData.csv","idProperty":"id","indexes":{"floors":{"type":"numeric","url":"0.csv","range":{"min":3,"max":12}}}}
}

// Example_dump writes every feature of a tileset as CSV.
func Example_dump() {
	ctx := context.Background()

	src := blobstore.NewMemoryStore()
	_ = src.Put(ctx, "tileset.json", []byte(`{"root":{"content":{"uri":"0.b3dm"}}}`))
	_ = src.Put(ctx, "0.b3dm", fixture.Tile{
		FeatureTable: map[string]any{"BATCH_LENGTH": 1},
		BatchTable:   map[string]any{"id": []any{"a"}, "floors": []any{3}},
	}.B3DM())

	var out strings.Builder
	n, err := tilesindex.Dump(ctx, src, "tileset.json", &out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d row(s)\n", n)
	// Output: 1 row(s)
}
