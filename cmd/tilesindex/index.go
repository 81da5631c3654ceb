package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tilesindex"
	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/tileset"
)

func runIndex(cmd *cobra.Command, flags *globalFlags, tilesetArg, configArg, outArg string) error {
	ctx := cmd.Context()

	s, logger, err := flags.load(cmd)
	if err != nil {
		return &inputError{what: "settings", err: err}
	}
	opts, err := options(s, logger)
	if err != nil {
		return &inputError{what: "settings", err: err}
	}
	c, _ := codec.ByName(s.Codec)

	src, tilesetName, err := openTileset(ctx, tilesetArg, s)
	if err != nil {
		return err
	}

	cfgStore, cfgName, err := openFile(ctx, configArg, s)
	if err != nil {
		return &inputError{what: "index config file " + configArg, err: err}
	}
	data, err := blobstore.ReadAll(ctx, cfgStore, cfgName)
	if err != nil {
		return &inputError{what: "index config file " + configArg, err: err}
	}
	cfg, err := config.ParseIndexes(data, c)
	if err != nil {
		return &inputError{what: "index config file " + configArg, err: err}
	}

	out, err := parseLocation(outArg)
	if err != nil {
		return &inputError{what: "output directory " + outArg, err: err}
	}
	if !out.remote() {
		if err := os.MkdirAll(out.path, 0o755); err != nil {
			return &inputError{what: "output directory " + outArg, err: err}
		}
	}
	dst, err := out.open(ctx, s)
	if err != nil {
		return &inputError{what: "output directory " + outArg, err: err}
	}

	// Inputs are valid; further failures are not usage problems.
	cmd.SilenceUsage = true

	root, err := tilesindex.New(src, dst, cfg, opts...).Run(ctx, tilesetName)
	if err != nil {
		return err
	}
	cmd.Printf("Indexes written to %s (%d indexes)\n", outArg, len(root.Indexes))
	return nil
}

// openTileset opens the store holding the root tileset and checks that the
// document parses, so a bad tileset is reported as an input error.
func openTileset(ctx context.Context, arg string, s *config.Settings) (blobstore.BlobStore, string, error) {
	src, name, err := openFile(ctx, arg, s)
	if err != nil {
		return nil, "", &inputError{what: "tileset file " + arg, err: err}
	}
	data, err := blobstore.ReadAll(ctx, src, name)
	if err != nil {
		return nil, "", &inputError{what: "tileset file " + arg, err: err}
	}
	c, _ := codec.ByName(s.Codec)
	if _, err := tileset.Parse(data, c); err != nil {
		return nil, "", &inputError{what: "tileset file " + arg, err: err}
	}
	return src, name, nil
}
