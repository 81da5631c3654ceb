// Package manifest reads and writes the index manifest, the entry point a
// viewer loads to find the feature table and every property index.
package manifest

import (
	"bytes"
	"context"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/index"
	"github.com/hupe1980/tilesindex/model"
)

// FileName is the name of the manifest inside the output location.
const FileName = "indexRoot.json"

// Entry is the index of one property.
type Entry struct {
	Property   string
	Definition index.Definition
}

// IndexRoot describes a complete set of index artifacts.
type IndexRoot struct {
	ResultsDataURL string
	IDProperty     string
	// Indexes keeps configuration order.
	Indexes []Entry
}

// Index returns the definition for property.
func (r *IndexRoot) Index(property string) (index.Definition, bool) {
	for _, e := range r.Indexes {
		if e.Property == property {
			return e.Definition, true
		}
	}
	return nil, false
}

// Validate checks structural completeness.
func (r *IndexRoot) Validate() error {
	if r.ResultsDataURL == "" {
		return fmt.Errorf("%w: manifest: resultsDataUrl is empty", model.ErrMalformedInput)
	}
	if r.IDProperty == "" {
		return fmt.Errorf("%w: manifest: idProperty is empty", model.ErrMalformedInput)
	}
	seen := make(map[string]bool, len(r.Indexes))
	for _, e := range r.Indexes {
		if e.Definition == nil {
			return fmt.Errorf("%w: manifest: index %q has no definition", model.ErrMalformedInput, e.Property)
		}
		if seen[e.Property] {
			return fmt.Errorf("%w: manifest: duplicate index %q", model.ErrMalformedInput, e.Property)
		}
		seen[e.Property] = true
	}
	return nil
}

// MarshalJSON writes the manifest with indexes in order.
func (r *IndexRoot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	write := func(v any) error {
		b, err := gojson.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	buf.WriteString(`{"resultsDataUrl":`)
	if err := write(r.ResultsDataURL); err != nil {
		return nil, err
	}
	buf.WriteString(`,"idProperty":`)
	if err := write(r.IDProperty); err != nil {
		return nil, err
	}
	buf.WriteString(`,"indexes":{`)
	for i, e := range r.Indexes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := write(e.Property); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := write(e.Definition); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a manifest preserving index order.
func (r *IndexRoot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ResultsDataURL string            `json:"resultsDataUrl"`
		IDProperty     string            `json:"idProperty"`
		Indexes        gojson.RawMessage `json:"indexes"`
	}
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys, values, err := index.DecodeOrdered(raw.Indexes)
	if err != nil {
		return err
	}

	r.ResultsDataURL = raw.ResultsDataURL
	r.IDProperty = raw.IDProperty
	r.Indexes = make([]Entry, 0, len(keys))
	for _, k := range keys {
		def, err := index.DecodeDefinition(values[k])
		if err != nil {
			return fmt.Errorf("index %q: %w", k, err)
		}
		r.Indexes = append(r.Indexes, Entry{Property: k, Definition: def})
	}
	return nil
}

// Store saves and loads the manifest in a blob store.
type Store struct {
	blobs blobstore.BlobStore
	codec codec.Codec
	name  string
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec used for the manifest document.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithPrefix places the manifest below prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.name = prefix + "/" + FileName
		}
	}
}

// NewStore creates a new manifest store.
func NewStore(blobs blobstore.BlobStore, opts ...Option) *Store {
	s := &Store{blobs: blobs, codec: codec.Default, name: FileName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save validates and writes root.
func (s *Store) Save(ctx context.Context, root *IndexRoot) error {
	if err := root.Validate(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(root)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return s.blobs.Put(ctx, s.name, data)
}

// Load reads and validates the manifest.
func (s *Store) Load(ctx context.Context) (*IndexRoot, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, s.name)
	if err != nil {
		return nil, err
	}
	root := &IndexRoot{}
	if err := s.codec.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", model.ErrMalformedInput, err)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}
