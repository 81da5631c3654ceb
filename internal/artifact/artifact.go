// Package artifact writes index artifacts to a blob store.
package artifact

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/internal/compress"
	"github.com/hupe1980/tilesindex/internal/resource"
)

// Writer stores artifacts under a prefix of a blob store, optionally
// compressing them. It implements index.Sink.
type Writer struct {
	store       blobstore.BlobStore
	prefix      string
	compression compress.Type
	controller  *resource.Controller

	mu      sync.Mutex
	written []string
	bytes   int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithPrefix stores artifacts below prefix. URLs stay relative to it.
func WithPrefix(prefix string) Option {
	return func(w *Writer) { w.prefix = prefix }
}

// WithCompression compresses artifacts and appends the matching suffix.
func WithCompression(t compress.Type) Option {
	return func(w *Writer) { w.compression = t }
}

// WithController throttles writes through the controller's IO limit.
func WithController(c *resource.Controller) Option {
	return func(w *Writer) { w.controller = c }
}

// NewWriter creates a Writer.
func NewWriter(store blobstore.BlobStore, opts ...Option) *Writer {
	w := &Writer{store: store}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Put stores data and returns its URL relative to the prefix.
func (w *Writer) Put(ctx context.Context, name string, data []byte) (string, error) {
	encoded, err := compress.Compress(w.compression, data)
	if err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	url := name + w.compression.Suffix()

	if err := w.controller.AcquireIO(ctx, len(encoded)); err != nil {
		return "", err
	}
	if err := w.store.Put(ctx, path.Join(w.prefix, url), encoded); err != nil {
		return "", fmt.Errorf("artifact %s: %w", url, err)
	}

	w.mu.Lock()
	w.written = append(w.written, url)
	w.bytes += int64(len(encoded))
	w.mu.Unlock()
	return url, nil
}

// Written returns the URLs written so far, in write order.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.written...)
}

// Bytes returns the total number of bytes stored.
func (w *Writer) Bytes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// Read loads an artifact written by a Writer, decompressing it according to
// its suffix.
func Read(ctx context.Context, store blobstore.BlobStore, name string) ([]byte, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return compress.Decompress(compress.Detect(name), data)
}
