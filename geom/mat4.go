package geom

import (
	"fmt"

	"github.com/hupe1980/tilesindex/model"
)

// Mat4 is a 4x4 matrix stored in column-major order, so the entry at row r
// and column c lives at index c*4+r. This matches the layout of tile
// transforms and glTF node matrices.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a pure translation by t.
func Translation(t Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// FromColumnMajor builds a matrix from 16 column-major values.
func FromColumnMajor(values []float64) (Mat4, error) {
	var m Mat4
	if len(values) != 16 {
		return m, fmt.Errorf("%w: matrix needs 16 values, got %d", model.ErrMalformedInput, len(values))
	}
	copy(m[:], values)
	return m, nil
}

// FromTRS composes translation, rotation (unit quaternion x, y, z, w) and
// scale into T * R * S.
func FromTRS(t Vec3, q [4]float64, s Vec3) Mat4 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	x2, y2, z2 := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	xw, yw, zw := x*w, y*w, z*w

	return Mat4{
		(1 - 2*(y2+z2)) * s.X, 2 * (xy + zw) * s.X, 2 * (xz - yw) * s.X, 0,
		2 * (xy - zw) * s.Y, (1 - 2*(x2+z2)) * s.Y, 2 * (yz + xw) * s.Y, 0,
		2 * (xz + yw) * s.Z, 2 * (yz - xw) * s.Z, (1 - 2*(x2+y2)) * s.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// At returns the entry at row r and column c.
func (m Mat4) At(r, c int) float64 { return m[c*4+r] }

// Mul returns m * o. Applied to a point, o acts first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * o[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// MulPoint transforms p as a point (w = 1), ignoring the projective row.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// YUpToZUp rotates +90 degrees about X, taking (0,1,0) to (0,0,1).
func YUpToZUp() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, -1, 0, 0,
		0, 0, 0, 1,
	}
}

// XUpToZUp rotates -90 degrees about Y, taking (1,0,0) to (0,0,1).
func XUpToZUp() Mat4 {
	return Mat4{
		0, 0, 1, 0,
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 0, 1,
	}
}

// Axis is a model up-axis convention.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns "X", "Y" or "Z".
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ToZUp returns the rotation that takes a model with up-axis a into the
// Z-up frame used for geodetic conversion.
func (a Axis) ToZUp() Mat4 {
	switch a {
	case AxisX:
		return XUpToZUp()
	case AxisY:
		return YUpToZUp()
	default:
		return Identity()
	}
}
