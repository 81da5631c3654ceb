// Command tilesindex builds search indexes for a 3D Tiles tileset.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tilesindex"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/internal/compress"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	settingsPath string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "tilesindex <tileset.json> <config.json> <outDir>",
		Short: "Build search indexes for a 3D Tiles tileset",
		Long: `tilesindex reads a 3D Tiles tileset with b3dm content, deduplicates its
features by the configured id property and writes a results table, one index
per configured property and an indexRoot.json manifest to outDir.

Locations may be local paths, s3://bucket/prefix or minio://bucket/prefix.

Examples:
  # Index a local tileset
  tilesindex ./tiles/tileset.json ./config.json ./index

  # Read from S3 and write zstd-compressed artifacts
  TILESINDEX_COMPRESSION=zstd tilesindex s3://tiles/city/tileset.json config.json s3://indexes/city`,
		Version: version,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, &flags, args[0], args[1], args[2])
		},
	}
	root.PersistentFlags().StringVarP(&flags.settingsPath, "settings", "s", "", "settings file (YAML)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newDumpCmd(&flags))
	return root
}

// load reads the settings and builds the logger they describe.
func (f *globalFlags) load(cmd *cobra.Command) (*config.Settings, *tilesindex.Logger, error) {
	s, err := config.LoadSettings(f.settingsPath)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		s.Log.Level = f.logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	w := cmd.ErrOrStderr()
	logger := tilesindex.NewTextLogger(w, level)
	if strings.EqualFold(s.Log.Format, "json") {
		logger = tilesindex.NewJSONLogger(w, level)
	}
	logger.Debug("settings loaded",
		"concurrency", s.Concurrency,
		"memory_limit", s.MemoryLimit.String(),
		"read_cache", s.ReadCache.String(),
		"io_limit", s.IOLimit.String(),
		"compression", s.Compression,
		"codec", s.Codec,
	)
	return s, logger, nil
}

// options translates settings into indexer options.
func options(s *config.Settings, logger *tilesindex.Logger) ([]tilesindex.Option, error) {
	c, ok := codec.ByName(s.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", s.Codec)
	}
	compression, err := compress.ParseType(s.Compression)
	if err != nil {
		return nil, err
	}
	return []tilesindex.Option{
		tilesindex.WithLogger(logger),
		tilesindex.WithCodec(c),
		tilesindex.WithConcurrency(s.Concurrency),
		tilesindex.WithMemoryLimit(int64(s.MemoryLimit)),
		tilesindex.WithIOLimit(int64(s.IOLimit)),
		tilesindex.WithReadCache(int64(s.ReadCache)),
		tilesindex.WithCompression(compression),
	}, nil
}

// inputError marks failures to read the command's inputs, which are
// reported together with the usage text.
type inputError struct {
	what string
	err  error
}

func (e *inputError) Error() string { return fmt.Sprintf("failed to read %s: %v", e.what, e.err) }

func (e *inputError) Unwrap() error { return e.err }
