// Package datatype describes the numeric component types and element types
// shared by batch-table binary properties and glTF accessors.
package datatype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/tilesindex/model"
)

// ComponentType is a numeric component code as used by glTF and 3D Tiles.
type ComponentType int

const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	Int           ComponentType = 5124
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
	Double        ComponentType = 5130
)

var componentNames = map[string]ComponentType{
	"BYTE":           Byte,
	"UNSIGNED_BYTE":  UnsignedByte,
	"SHORT":          Short,
	"UNSIGNED_SHORT": UnsignedShort,
	"INT":            Int,
	"UNSIGNED_INT":   UnsignedInt,
	"FLOAT":          Float,
	"DOUBLE":         Double,
}

// ComponentTypeFromName resolves a component type name such as "FLOAT".
func ComponentTypeFromName(name string) (ComponentType, error) {
	ct, ok := componentNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown component type %q", model.ErrBinaryFormat, name)
	}
	return ct, nil
}

// ComponentTypeFromCode validates a numeric component code.
func ComponentTypeFromCode(code int) (ComponentType, error) {
	ct := ComponentType(code)
	if ct.Size() == 0 {
		return 0, fmt.Errorf("%w: unknown component type %d", model.ErrBinaryFormat, code)
	}
	return ct, nil
}

// Size returns the byte size of one component, or 0 for unknown codes.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case Int, UnsignedInt, Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

// String returns the component type name.
func (c ComponentType) String() string {
	for name, ct := range componentNames {
		if ct == c {
			return name
		}
	}
	return fmt.Sprintf("ComponentType(%d)", int(c))
}

// Read decodes one little-endian component from b. Integer components are
// converted exactly, floats keep their IEEE-754 value.
func (c ComponentType) Read(b []byte) float64 {
	switch c {
	case Byte:
		return float64(int8(b[0]))
	case UnsignedByte:
		return float64(b[0])
	case Short:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case UnsignedShort:
		return float64(binary.LittleEndian.Uint16(b))
	case Int:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case UnsignedInt:
		return float64(binary.LittleEndian.Uint32(b))
	case Float:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Double:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return math.NaN()
	}
}

// Put encodes v as one little-endian component into b.
func (c ComponentType) Put(b []byte, v float64) {
	switch c {
	case Byte:
		b[0] = byte(int8(v))
	case UnsignedByte:
		b[0] = byte(v)
	case Short:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case UnsignedShort:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case Int:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	case UnsignedInt:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case Float:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case Double:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

// ElementType is the shape of one element: a scalar, a vector or a matrix.
type ElementType string

const (
	Scalar ElementType = "SCALAR"
	Vec2   ElementType = "VEC2"
	Vec3   ElementType = "VEC3"
	Vec4   ElementType = "VEC4"
	Mat2   ElementType = "MAT2"
	Mat3   ElementType = "MAT3"
	Mat4   ElementType = "MAT4"
)

// Components returns the number of components per element, or 0 if the
// element type is unknown.
func (e ElementType) Components() int {
	switch e {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// ParseElementType validates an element type tag.
func ParseElementType(s string) (ElementType, error) {
	e := ElementType(s)
	if e.Components() == 0 {
		return "", fmt.Errorf("%w: unknown element type %q", model.ErrBinaryFormat, s)
	}
	return e, nil
}
