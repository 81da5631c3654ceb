// Package tilesindex builds search indexes for 3D Tiles tilesets.
//
// An Indexer walks a tileset and every external tileset it references,
// decodes the features of each b3dm tile together with a representative
// geographic position, deduplicates them by an id property and writes:
//
//   - resultsData.csv, one row per unique feature with its position
//   - one numeric, enum or text index per configured property
//   - indexRoot.json, the manifest a viewer loads first
//
// # Quick Start
//
//	ctx := context.Background()
//	cfg, _ := config.ParseIndexes(configJSON, codec.Default)
//
//	src := blobstore.NewLocalStore("./tiles")
//	dst := blobstore.NewLocalStore("./index")
//
//	ix := tilesindex.New(src, dst, cfg,
//	    tilesindex.WithLogger(tilesindex.NewTextLogger(os.Stderr, slog.LevelInfo)),
//	)
//	root, err := ix.Run(ctx, "tileset.json")
//
// Sources and destinations are blob stores, so tilesets can also be read
// from and indexes written to S3 (blobstore/s3) or MinIO (blobstore/minio).
//
// # Deduplication
//
// Tilesets are processed in breadth order of external references, and
// tiles inside one tileset in depth-first document order. When two tiles
// carry a feature with the same id the later one replaces the earlier one,
// which for a typical level-of-detail hierarchy keeps the finest content.
//
// # Errors
//
// Failures to load the root tileset or the index configuration, binary
// decode errors and write errors abort the run. Tiles without BATCH_LENGTH,
// unsupported tile formats and unreadable external tilesets are skipped
// with a warning. Failures attributable to one tile are *TileError values
// wrapping one of the sentinel errors.
package tilesindex
