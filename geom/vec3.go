// Package geom holds the small amount of linear algebra and geodesy the
// indexer needs: column-major 4x4 affine matrices, 3-vectors, and the WGS84
// cartesian to cartographic conversion.
package geom

import "math"

// Vec3 is a cartesian point or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// MulComponents returns the component-wise product of v and o.
func (v Vec3) MulComponents(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Magnitude returns the euclidean length of v.
func (v Vec3) Magnitude() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length.
func (v Vec3) Normalize() Vec3 {
	m := v.Magnitude()
	return Vec3{v.X / m, v.Y / m, v.Z / m}
}

// Vec3FromSlice builds a vector from the first three values of s.
func Vec3FromSlice(s []float64) Vec3 {
	return Vec3{s[0], s[1], s[2]}
}
