package tileset

import (
	"github.com/hupe1980/tilesindex/b3dm"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/gltf"
)

// Composer builds the transforms that place model vertices in the
// earth-centred frame:
//
//	world = tile * rtc * upAxis * node
//
// The node part is applied by position.Compute; Composer supplies the rest.
type Composer struct {
	UpAxis geom.Axis
}

// Tile returns the effective transform of t below a parent whose effective
// transform is parent. Tiles without a transform inherit the parent's.
func (Composer) Tile(parent geom.Mat4, t *Tile) geom.Mat4 {
	if len(t.Transform) != 16 {
		return parent
	}
	local, _ := geom.FromColumnMajor(t.Transform)
	return parent.Mul(local)
}

// Model returns tile * rtc * upAxis.
func (c Composer) Model(tile geom.Mat4, rtc geom.Mat4) geom.Mat4 {
	return tile.Mul(rtc).Mul(c.UpAxis.ToZUp())
}

// RTC returns the relative-to-centre translation of a payload. The feature
// table's RTC_CENTER wins over the model's CESIUM_RTC extension.
func RTC(ft *b3dm.FeatureTable, m gltf.Model) (geom.Mat4, error) {
	if ft != nil {
		c, ok, err := ft.RTCCenter()
		if err != nil {
			return geom.Mat4{}, err
		}
		if ok {
			return geom.Translation(geom.Vec3{X: c[0], Y: c[1], Z: c[2]}), nil
		}
	}
	if m != nil {
		if c, ok := m.RTCCenter(); ok {
			return geom.Translation(geom.Vec3{X: c[0], Y: c[1], Z: c[2]}), nil
		}
	}
	return geom.Identity(), nil
}
