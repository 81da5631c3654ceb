package b3dm

import (
	"fmt"
	"math"

	"github.com/hupe1980/tilesindex/datatype"
	"github.com/hupe1980/tilesindex/model"
)

// BinaryProperty describes a batch-table property stored in the binary body.
type BinaryProperty struct {
	ByteOffset    int
	ComponentType datatype.ComponentType
	Type          datatype.ElementType
}

// ParseBinaryProperty validates a descriptor of the form
// {"byteOffset": n, "componentType": code|name, "type": "VEC3"}.
func ParseBinaryProperty(v any) (BinaryProperty, error) {
	var p BinaryProperty

	m, ok := v.(map[string]any)
	if !ok {
		return p, fmt.Errorf("%w: binary property must be an object, got %T", model.ErrMalformedInput, v)
	}

	off, ok := m["byteOffset"].(float64)
	if !ok || off < 0 || off != math.Trunc(off) {
		return p, fmt.Errorf("%w: binary property byteOffset must be a non-negative integer", model.ErrMalformedInput)
	}
	p.ByteOffset = int(off)

	typ, ok := m["type"].(string)
	if !ok {
		return p, fmt.Errorf("%w: binary property type must be a string", model.ErrMalformedInput)
	}
	et, err := datatype.ParseElementType(typ)
	if err != nil {
		return p, fmt.Errorf("%w: %w", model.ErrMalformedInput, err)
	}
	p.Type = et

	switch ct := m["componentType"].(type) {
	case float64:
		p.ComponentType, err = datatype.ComponentTypeFromCode(int(ct))
	case string:
		p.ComponentType, err = datatype.ComponentTypeFromName(ct)
	default:
		return p, fmt.Errorf("%w: binary property componentType must be a code or a name", model.ErrMalformedInput)
	}
	if err != nil {
		return p, fmt.Errorf("%w: %w", model.ErrMalformedInput, err)
	}

	return p, nil
}

// Size returns the number of bytes n elements of p occupy.
func (p BinaryProperty) Size(n int) int {
	return p.Type.Components() * p.ComponentType.Size() * n
}

// ReadBinaryProperty decodes n elements of p from blob. SCALAR properties
// yield float64 values, every other element type yields []float64 tuples.
func ReadBinaryProperty(p BinaryProperty, blob []byte, n int) ([]any, error) {
	comps := p.Type.Components()
	size := p.ComponentType.Size()
	if comps == 0 || size == 0 {
		return nil, fmt.Errorf("%w: unsupported binary property %s/%s", model.ErrBinaryFormat, p.Type, p.ComponentType)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", model.ErrBinaryFormat, n)
	}

	end := p.ByteOffset + p.Size(n)
	if p.ByteOffset > len(blob) || end > len(blob) {
		return nil, fmt.Errorf("%w: binary property [%d,%d) exceeds batch table body of %d bytes",
			model.ErrBinaryFormat, p.ByteOffset, end, len(blob))
	}

	out := make([]any, n)
	off := p.ByteOffset
	for i := 0; i < n; i++ {
		if comps == 1 {
			out[i] = p.ComponentType.Read(blob[off:])
			off += size
			continue
		}
		tuple := make([]float64, comps)
		for c := range tuple {
			tuple[c] = p.ComponentType.Read(blob[off:])
			off += size
		}
		out[i] = tuple
	}
	return out, nil
}
