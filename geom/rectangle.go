package geom

import (
	"math"

	"github.com/paulmach/orb"
)

const twoPi = 2 * math.Pi

// Rectangle is a geodetic rectangle in radians. East may be smaller than West
// when the rectangle crosses the antimeridian.
type Rectangle struct {
	West, South, East, North float64
}

// RectangleFromCartographics returns the smallest rectangle enclosing the
// given positions. Longitudes are also measured on [0, 2pi) and that
// interpretation wins when it is narrower, which keeps clusters straddling the
// antimeridian from spanning the whole globe.
func RectangleFromCartographics(points []Cartographic) Rectangle {
	if len(points) == 0 {
		return Rectangle{}
	}

	normal := make(orb.MultiPoint, len(points))
	shifted := make(orb.MultiPoint, len(points))
	for i, p := range points {
		lon := p.Longitude
		normal[i] = orb.Point{lon, p.Latitude}
		if lon < 0 {
			lon += twoPi
		}
		shifted[i] = orb.Point{lon, p.Latitude}
	}

	b := normal.Bound()
	bo := shifted.Bound()

	r := Rectangle{West: b.Left(), South: b.Bottom(), East: b.Right(), North: b.Top()}
	if r.East-r.West > bo.Right()-bo.Left() {
		r.West, r.East = bo.Left(), bo.Right()
		if r.East > math.Pi {
			r.East -= twoPi
		}
		if r.West > math.Pi {
			r.West -= twoPi
		}
	}
	return r
}

// Center returns the centre of r at height zero.
func (r Rectangle) Center() Cartographic {
	east := r.East
	if east < r.West {
		east += twoPi
	}
	return Cartographic{
		Longitude: NegativePiToPi((r.West + east) * 0.5),
		Latitude:  (r.South + r.North) * 0.5,
	}
}

const epsilon14 = 1e-14

// NegativePiToPi wraps an angle into [-pi, pi].
func NegativePiToPi(angle float64) float64 {
	if angle >= -math.Pi && angle <= math.Pi {
		return angle
	}
	return ZeroToTwoPi(angle+math.Pi) - math.Pi
}

// ZeroToTwoPi wraps an angle into [0, 2pi].
func ZeroToTwoPi(angle float64) float64 {
	if angle >= 0 && angle <= twoPi {
		return angle
	}
	m := mod(angle, twoPi)
	if math.Abs(m) < epsilon14 && math.Abs(angle) > epsilon14 {
		return twoPi
	}
	return m
}

// mod is a modulo whose result takes the sign of n.
func mod(m, n float64) float64 {
	if sign(m) == sign(n) && math.Abs(m) < math.Abs(n) {
		return m
	}
	return math.Mod(math.Mod(m, n)+n, n)
}
