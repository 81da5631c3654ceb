package tileset

import (
	"fmt"
	"math"

	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/model"
)

// BoundingVolume is a tile's bounding volume. At most one form is expected.
type BoundingVolume struct {
	// Box is a centre followed by three half-axis vectors.
	Box []float64 `json:"box,omitempty"`
	// Sphere is a centre followed by a radius.
	Sphere []float64 `json:"sphere,omitempty"`
	// Region is west, south, east, north in radians plus min and max height.
	Region []float64 `json:"region,omitempty"`
}

func (bv *BoundingVolume) validate() error {
	if bv == nil {
		return nil
	}
	switch {
	case bv.Box != nil && len(bv.Box) != 12:
		return fmt.Errorf("%w: bounding box has %d values, want 12", model.ErrMalformedInput, len(bv.Box))
	case bv.Sphere != nil && len(bv.Sphere) != 4:
		return fmt.Errorf("%w: bounding sphere has %d values, want 4", model.ErrMalformedInput, len(bv.Sphere))
	case bv.Region != nil && len(bv.Region) != 6:
		return fmt.Errorf("%w: bounding region has %d values, want 6", model.ErrMalformedInput, len(bv.Region))
	}
	return nil
}

// Position returns a representative position for the volume. Box and sphere
// centres are placed with the tile's composed transform; regions are already
// geographic. A region's height follows the feature height rule.
func (bv *BoundingVolume) Position(transform geom.Mat4) (model.Position, bool) {
	if bv == nil {
		return model.Position{}, false
	}

	switch {
	case len(bv.Box) == 12:
		return centerPosition(transform.MulPoint(geom.Vec3FromSlice(bv.Box)))
	case len(bv.Sphere) == 4:
		return centerPosition(transform.MulPoint(geom.Vec3FromSlice(bv.Sphere)))
	case len(bv.Region) == 6:
		r := geom.Rectangle{West: bv.Region[0], South: bv.Region[1], East: bv.Region[2], North: bv.Region[3]}
		c := r.Center()
		return model.Position{
			Latitude:  geom.ToDegrees(c.Latitude),
			Longitude: geom.ToDegrees(c.Longitude),
			Height:    bv.Region[5] - math.Max(0, bv.Region[4]),
		}, true
	}
	return model.Position{}, false
}

func centerPosition(p geom.Vec3) (model.Position, bool) {
	c, ok := geom.WGS84.CartesianToCartographic(p)
	if !ok {
		return model.Position{}, false
	}
	return model.Position{
		Latitude:  geom.ToDegrees(c.Latitude),
		Longitude: geom.ToDegrees(c.Longitude),
		Height:    c.Height,
	}, true
}
