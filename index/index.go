package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/lexical"
	"github.com/hupe1980/tilesindex/lexical/bm25"
	"github.com/hupe1980/tilesindex/model"
)

// Type identifies an index kind.
type Type string

// Index types.
const (
	TypeNumeric Type = "numeric"
	TypeEnum    Type = "enum"
	TypeText    Type = "text"
)

// Sink stores index artifacts.
type Sink interface {
	// Put stores data under name and returns the URL the manifest should
	// reference, relative to the manifest.
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Builder accumulates the values of one property and writes its index.
type Builder interface {
	// Property returns the indexed property name.
	Property() string
	// Type returns the index type.
	Type() Type
	// Add records the value of the property for a feature row.
	Add(rowID int, value any)
	// Write emits the artifacts and returns the manifest entry.
	Write(ctx context.Context, sink Sink, fileID int) (Definition, error)
}

type options struct {
	codec   codec.Codec
	lexical lexical.Factory
}

// Option configures a Builder.
type Option func(*options)

// WithCodec sets the codec used for JSON artifacts.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLexicalFactory sets the full-text index implementation.
func WithLexicalFactory(f lexical.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.lexical = f
		}
	}
}

// Constructor creates a builder for property.
type Constructor func(property string, opts ...Option) Builder

var (
	registryMu sync.RWMutex
	registry   = map[Type]Constructor{}
)

// Register makes a builder type available to NewBuilder.
//
// Builder implementations typically call this from an init() function.
func Register(t Type, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = c
}

// Types returns the registered index types in sorted order.
func Types() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// NewBuilder creates a builder of type t for property.
func NewBuilder(property string, t Type, opts ...Option) (Builder, error) {
	registryMu.RLock()
	c, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown index type %q for property %q", model.ErrMalformedInput, t, property)
	}
	return c(property, opts...), nil
}

func applyOptions(opts []Option) options {
	o := options{
		codec:   codec.Default,
		lexical: bm25.NewFactory(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func init() {
	Register(TypeNumeric, func(p string, opts ...Option) Builder { return NewNumericBuilder(p) })
	Register(TypeEnum, func(p string, opts ...Option) Builder { return NewEnumBuilder(p) })
	Register(TypeText, func(p string, opts ...Option) Builder { return NewTextBuilder(p, opts...) })
}
