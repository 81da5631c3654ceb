package geom

import "math"

// Cartographic is a geodetic position with longitude and latitude in radians.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// Ellipsoid is a triaxial ellipsoid centred at the origin.
type Ellipsoid struct {
	Radii              Vec3
	OneOverRadii       Vec3
	OneOverRadiiSquare Vec3
	// CenterToleranceSquared bounds the scaled squared norm below which the
	// surface projection falls back to a radial one.
	CenterToleranceSquared float64
}

// NewEllipsoid builds an ellipsoid from its radii.
func NewEllipsoid(radii Vec3) *Ellipsoid {
	return &Ellipsoid{
		Radii:                  radii,
		OneOverRadii:           Vec3{1 / radii.X, 1 / radii.Y, 1 / radii.Z},
		OneOverRadiiSquare:     Vec3{1 / (radii.X * radii.X), 1 / (radii.Y * radii.Y), 1 / (radii.Z * radii.Z)},
		CenterToleranceSquared: 0.1,
	}
}

// WGS84 is the ellipsoid used by 3D Tiles for earth-centred coordinates.
var WGS84 = NewEllipsoid(Vec3{6378137.0, 6378137.0, 6356752.3142451793})

const epsilon12 = 1e-12

// ScaleToGeodeticSurface projects p onto the ellipsoid surface along the
// geodetic normal. It returns false for the centre of the ellipsoid.
func (e *Ellipsoid) ScaleToGeodeticSurface(p Vec3) (Vec3, bool) {
	inv := e.OneOverRadii
	invSq := e.OneOverRadiiSquare

	x2 := p.X * p.X * inv.X * inv.X
	y2 := p.Y * p.Y * inv.Y * inv.Y
	z2 := p.Z * p.Z * inv.Z * inv.Z

	squaredNorm := x2 + y2 + z2
	ratio := math.Sqrt(1.0 / squaredNorm)
	intersection := p.Scale(ratio)

	if squaredNorm < e.CenterToleranceSquared {
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			return Vec3{}, false
		}
		return intersection, true
	}

	gradient := Vec3{
		intersection.X * invSq.X * 2.0,
		intersection.Y * invSq.Y * 2.0,
		intersection.Z * invSq.Z * 2.0,
	}

	lambda := ((1.0 - ratio) * p.Magnitude()) / (0.5 * gradient.Magnitude())
	correction := 0.0

	var xm, ym, zm float64
	for {
		lambda -= correction

		xm = 1.0 / (1.0 + lambda*invSq.X)
		ym = 1.0 / (1.0 + lambda*invSq.Y)
		zm = 1.0 / (1.0 + lambda*invSq.Z)

		xm2, ym2, zm2 := xm*xm, ym*ym, zm*zm
		xm3, ym3, zm3 := xm2*xm, ym2*ym, zm2*zm

		fn := x2*xm2 + y2*ym2 + z2*zm2 - 1.0
		denominator := x2*xm3*invSq.X + y2*ym3*invSq.Y + z2*zm3*invSq.Z
		derivative := -2.0 * denominator
		correction = fn / derivative

		if math.Abs(fn) <= epsilon12 {
			break
		}
	}

	return Vec3{p.X * xm, p.Y * ym, p.Z * zm}, true
}

// CartesianToCartographic converts an earth-centred cartesian position to a
// geodetic one. It returns false for the centre of the ellipsoid.
func (e *Ellipsoid) CartesianToCartographic(p Vec3) (Cartographic, bool) {
	surface, ok := e.ScaleToGeodeticSurface(p)
	if !ok {
		return Cartographic{}, false
	}

	n := surface.MulComponents(e.OneOverRadiiSquare).Normalize()
	h := p.Sub(surface)

	return Cartographic{
		Longitude: math.Atan2(n.Y, n.X),
		Latitude:  math.Asin(n.Z),
		Height:    sign(h.Dot(p)) * h.Magnitude(),
	}, true
}

// CartographicToCartesian converts a geodetic position back to an
// earth-centred cartesian one.
func (e *Ellipsoid) CartographicToCartesian(c Cartographic) Vec3 {
	cosLat := math.Cos(c.Latitude)
	n := Vec3{
		cosLat * math.Cos(c.Longitude),
		cosLat * math.Sin(c.Longitude),
		math.Sin(c.Latitude),
	}.Normalize()

	radiiSquared := e.Radii.MulComponents(e.Radii)
	k := radiiSquared.MulComponents(n)
	gamma := math.Sqrt(n.Dot(k))
	k = k.Scale(1 / gamma)

	return k.Add(n.Scale(c.Height))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

const (
	degreesPerRadian = 180.0 / float64(math.Pi)
	radiansPerDegree = float64(math.Pi) / 180.0
)

// ToDegrees converts radians to degrees.
func ToDegrees(rad float64) float64 { return rad * degreesPerRadian }

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 { return deg * radiansPerDegree }
