package main

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/blobstore/minio"
	"github.com/hupe1980/tilesindex/blobstore/s3"
	"github.com/hupe1980/tilesindex/config"
)

// location is a parsed command line location: a local path,
// s3://bucket/prefix or minio://bucket/prefix.
type location struct {
	scheme string // "" for local paths
	bucket string
	path   string // slash-separated key for remote, OS path for local
}

func parseLocation(raw string) (location, error) {
	if raw == "" {
		return location{}, fmt.Errorf("empty location")
	}
	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		return location{path: raw}, nil
	}
	switch scheme {
	case "s3", "minio":
	default:
		return location{}, fmt.Errorf("unsupported location scheme %q", scheme)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return location{}, err
	}
	if u.Host == "" {
		return location{}, fmt.Errorf("location %q has no bucket", raw)
	}
	return location{scheme: scheme, bucket: u.Host, path: strings.Trim(u.Path, "/")}, nil
}

func (l location) remote() bool { return l.scheme != "" }

// split returns the directory holding a file location and the file name.
func (l location) split() (location, string) {
	dir := l
	if l.remote() {
		dir.path = path.Dir(l.path)
		if dir.path == "." {
			dir.path = ""
		}
		return dir, path.Base(l.path)
	}
	dir.path = filepath.Dir(l.path)
	return dir, filepath.Base(l.path)
}

// open returns a blob store rooted at a directory location.
func (l location) open(ctx context.Context, s *config.Settings) (blobstore.BlobStore, error) {
	switch l.scheme {
	case "s3":
		opts := []s3.Option{s3.WithPrefix(l.path)}
		if s.S3.Region != "" {
			opts = append(opts, s3.WithRegion(s.S3.Region))
		}
		if s.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(s.S3.Endpoint))
		}
		return s3.New(ctx, l.bucket, opts...)
	case "minio":
		return minio.NewFromEnv(l.bucket, l.path)
	default:
		return blobstore.NewLocalStore(l.path), nil
	}
}

// openFile opens the store holding a file location and returns the file's
// name inside it.
func openFile(ctx context.Context, raw string, s *config.Settings) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}
	dir, name := loc.split()
	store, err := dir.open(ctx, s)
	if err != nil {
		return nil, "", err
	}
	return store, name, nil
}
