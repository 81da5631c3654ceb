package main

import (
	"bytes"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tilesindex"
)

func newDumpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <tileset.json> <out.csv>",
		Short: "Write the batch properties of every feature as CSV",
		Long: `Write the batch properties of every feature in a tileset as CSV, one row
per batch entry and without deduplication. Use "-" as output to write to stdout.

Examples:
  tilesindex dump ./tiles/tileset.json features.csv
  tilesindex dump s3://tiles/city/tileset.json -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, flags, args[0], args[1])
		},
	}
}

func runDump(cmd *cobra.Command, flags *globalFlags, tilesetArg, outArg string) error {
	ctx := cmd.Context()

	s, logger, err := flags.load(cmd)
	if err != nil {
		return &inputError{what: "settings", err: err}
	}
	opts, err := options(s, logger)
	if err != nil {
		return &inputError{what: "settings", err: err}
	}

	src, tilesetName, err := openTileset(ctx, tilesetArg, s)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	var buf bytes.Buffer
	if outArg != "-" {
		w = &buf
	}

	cmd.SilenceUsage = true
	n, err := tilesindex.Dump(ctx, src, tilesetName, w, opts...)
	if err != nil {
		return err
	}

	if outArg != "-" {
		dst, name, err := openFile(ctx, outArg, s)
		if err != nil {
			return err
		}
		if err := dst.Put(ctx, name, buf.Bytes()); err != nil {
			return err
		}
		cmd.Printf("Dumped %d rows.\n", n)
	}
	return nil
}
