package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/hupe1980/tilesindex/internal/compress"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TILESINDEX_"

	maxSettingsFileSize = 1024 * 1024 // 1MB
)

// LogSettings configures logging.
type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// S3Settings configures s3:// locations. Empty values fall back to the
// AWS SDK defaults.
type S3Settings struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// Settings are the runtime settings of the indexer.
type Settings struct {
	Log LogSettings `koanf:"log"`
	// Concurrency bounds the number of tiles decoded at once.
	Concurrency int `koanf:"concurrency"`
	// MemoryLimit bounds the bytes of tile payloads held at once. 0 disables it.
	MemoryLimit ByteSize `koanf:"memory_limit"`
	// ReadCache is the byte capacity of the cache for shared blobs. 0 disables it.
	ReadCache ByteSize `koanf:"read_cache"`
	// IOLimit throttles tile reads and artifact writes in bytes per second.
	// 0 disables it.
	IOLimit ByteSize `koanf:"io_limit"`
	// Compression is the artifact compression: none, zstd or lz4.
	Compression string `koanf:"compression"`
	// Codec is the JSON codec name: go-json or json.
	Codec string     `koanf:"codec"`
	S3    S3Settings `koanf:"s3"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Log:         LogSettings{Level: "info", Format: "text"},
		Concurrency: runtime.GOMAXPROCS(0),
		Compression: "none",
		Codec:       "go-json",
	}
}

// LoadSettings loads settings from the YAML file at path, if path is not
// empty, then applies TILESINDEX_* environment overrides.
//
//	TILESINDEX_LOG_LEVEL   -> log.level
//	TILESINDEX_S3_REGION   -> s3.region
//	TILESINDEX_IO_LIMIT    -> io_limit
//	TILESINDEX_COMPRESSION -> compression
//
// Byte counts accept units, as in TILESINDEX_READ_CACHE=256MiB.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat settings file: %w", err)
		}
		if info.Size() > maxSettingsFileSize {
			return nil, fmt.Errorf("settings file %s exceeds %d bytes", path, maxSettingsFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	s := DefaultSettings()
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return &s, nil
}

// envKey maps TILESINDEX_LOG_LEVEL to log.level and keeps underscores in
// top-level keys such as io_limit.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"log", "s3"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}
	if s.MemoryLimit < 0 {
		return fmt.Errorf("memory_limit must not be negative")
	}
	if s.ReadCache < 0 {
		return fmt.Errorf("read_cache must not be negative")
	}
	if s.IOLimit < 0 {
		return fmt.Errorf("io_limit must not be negative")
	}
	if _, err := compress.ParseType(s.Compression); err != nil {
		return err
	}
	switch s.Codec {
	case "json", "go-json":
	default:
		return fmt.Errorf("unknown codec %q", s.Codec)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", s.Log.Format)
	}
	return nil
}
