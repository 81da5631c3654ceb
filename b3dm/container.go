// Package b3dm decodes Batched 3D Model tile payloads.
//
// A payload is a 28-byte little-endian header followed by four sections
// (feature-table JSON, feature-table binary, batch-table JSON, batch-table
// binary) and the embedded glTF model, which takes every remaining byte.
package b3dm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/model"
)

// HeaderLength is the size of the fixed header; the body starts here.
const HeaderLength = 28

// Magic identifies a b3dm payload.
const Magic = "b3dm"

// Header is the fixed-size b3dm header.
type Header struct {
	Version                  uint32
	ByteLength               uint32
	FeatureTableJSONLength   uint32
	FeatureTableBinaryLength uint32
	BatchTableJSONLength     uint32
	BatchTableBinaryLength   uint32
}

// Container is a decoded b3dm payload. All sections alias the input buffer.
type Container struct {
	Header

	featureTableJSON   []byte
	featureTableBinary []byte
	batchTableJSON     []byte
	batchTableBinary   []byte
	model              []byte
}

// IsB3DM reports whether data starts with the b3dm magic.
func IsB3DM(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == Magic
}

// Decode slices a payload into its sections.
func Decode(data []byte) (*Container, error) {
	if len(data) < HeaderLength {
		return nil, fmt.Errorf("%w: b3dm payload is %d bytes, header needs %d", model.ErrBinaryFormat, len(data), HeaderLength)
	}
	if !IsB3DM(data) {
		return nil, fmt.Errorf("%w: bad b3dm magic %q", model.ErrBinaryFormat, data[:4])
	}

	h := Header{
		Version:                  binary.LittleEndian.Uint32(data[4:8]),
		ByteLength:               binary.LittleEndian.Uint32(data[8:12]),
		FeatureTableJSONLength:   binary.LittleEndian.Uint32(data[12:16]),
		FeatureTableBinaryLength: binary.LittleEndian.Uint32(data[16:20]),
		BatchTableJSONLength:     binary.LittleEndian.Uint32(data[20:24]),
		BatchTableBinaryLength:   binary.LittleEndian.Uint32(data[24:28]),
	}

	c := &Container{Header: h}
	off := uint64(HeaderLength)
	sections := []struct {
		dst    *[]byte
		length uint32
		name   string
	}{
		{&c.featureTableJSON, h.FeatureTableJSONLength, "feature table JSON"},
		{&c.featureTableBinary, h.FeatureTableBinaryLength, "feature table binary"},
		{&c.batchTableJSON, h.BatchTableJSONLength, "batch table JSON"},
		{&c.batchTableBinary, h.BatchTableBinaryLength, "batch table binary"},
	}
	for _, s := range sections {
		end := off + uint64(s.length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: %s [%d,%d) exceeds payload of %d bytes", model.ErrBinaryFormat, s.name, off, end, len(data))
		}
		*s.dst = data[off:end:end]
		off = end
	}
	c.model = data[off:]

	return c, nil
}

// FeatureTableJSON returns the raw feature-table JSON section.
func (c *Container) FeatureTableJSON() []byte { return c.featureTableJSON }

// FeatureTableBinary returns the feature-table binary body.
func (c *Container) FeatureTableBinary() []byte { return c.featureTableBinary }

// BatchTableJSON returns the raw batch-table JSON section.
func (c *Container) BatchTableJSON() []byte { return c.batchTableJSON }

// BatchTableBinary returns the batch-table binary body.
func (c *Container) BatchTableBinary() []byte { return c.batchTableBinary }

// ModelPayload returns the embedded glTF model.
func (c *Container) ModelPayload() []byte { return c.model }

// FeatureTable parses the feature-table JSON with c.
func (c *Container) FeatureTable(cd codec.Codec) (*FeatureTable, error) {
	doc, err := decodeJSONSection(cd, c.featureTableJSON, "feature table")
	if err != nil {
		return nil, err
	}
	return &FeatureTable{JSON: doc, Binary: c.featureTableBinary}, nil
}

// BatchTable parses the batch-table JSON with c.
func (c *Container) BatchTable(cd codec.Codec) (*BatchTable, error) {
	doc, err := decodeJSONSection(cd, c.batchTableJSON, "batch table")
	if err != nil {
		return nil, err
	}
	return &BatchTable{JSON: doc, Binary: c.batchTableBinary}, nil
}

func decodeJSONSection(cd codec.Codec, data []byte, name string) (map[string]any, error) {
	doc := map[string]any{}
	err := codec.Decode(cd, data, &doc)
	if errors.Is(err, codec.ErrEmptyDocument) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s JSON: %w", model.ErrBinaryFormat, name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Sections holds the raw parts of a payload for Encode.
type Sections struct {
	FeatureTableJSON   []byte
	FeatureTableBinary []byte
	BatchTableJSON     []byte
	BatchTableBinary   []byte
	Model              []byte
}

// Encode assembles a version 1 payload from its sections.
func Encode(s Sections) []byte {
	total := HeaderLength + len(s.FeatureTableJSON) + len(s.FeatureTableBinary) +
		len(s.BatchTableJSON) + len(s.BatchTableBinary) + len(s.Model)

	out := make([]byte, HeaderLength, total)
	copy(out[0:4], Magic)
	binary.LittleEndian.PutUint32(out[4:8], 1)
	binary.LittleEndian.PutUint32(out[8:12], uint32(total))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(s.FeatureTableJSON)))
	binary.LittleEndian.PutUint32(out[16:20], uint32(len(s.FeatureTableBinary)))
	binary.LittleEndian.PutUint32(out[20:24], uint32(len(s.BatchTableJSON)))
	binary.LittleEndian.PutUint32(out[24:28], uint32(len(s.BatchTableBinary)))

	out = append(out, s.FeatureTableJSON...)
	out = append(out, s.FeatureTableBinary...)
	out = append(out, s.BatchTableJSON...)
	out = append(out, s.BatchTableBinary...)
	out = append(out, s.Model...)
	return out
}
