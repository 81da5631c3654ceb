// Package codec centralizes JSON encoding for every document the indexer
// reads (tilesets, index configuration, batch and feature tables, glTF) and
// writes (text indexes, the index manifest).
//
// The codecs are interchangeable for every document handled here; the
// choice only affects decode speed.
package codec

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned by Decode when nothing but padding is left.
var ErrEmptyDocument = errors.New("codec: empty document")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Or returns c, or Default when c is nil.
func Or(c Codec) Codec {
	if c == nil {
		return Default
	}
	return c
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Trim strips a leading UTF-8 byte order mark and the trailing space and NUL
// padding that b3dm and GLB writers use to align JSON sections.
func Trim(data []byte) []byte {
	data = bytes.TrimPrefix(data, bom)
	return bytes.TrimRight(data, " \x00")
}

// Decode trims data and unmarshals it into v with c (Default when nil).
func Decode(c Codec, data []byte, v any) error {
	data = Trim(data)
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	return Or(c).Unmarshal(data, v)
}

// MustMarshal is a helper for tests and fixtures.
func MustMarshal(c Codec, v any) []byte {
	c = Or(c)
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
