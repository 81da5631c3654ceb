// Package fixture builds small synthetic tile payloads for tests.
package fixture

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/tilesindex/b3dm"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/gltf"
)

// Vertex is a model-space vertex tagged with a batch id.
type Vertex struct {
	X, Y, Z float32
	BatchID uint16
}

// Model describes a one-node, one-primitive glTF model.
type Model struct {
	Vertices []Vertex
	// NoBatchIDs omits the _BATCHID attribute.
	NoBatchIDs bool
	NodeMatrix []float64
	RTCCenter  []float64
}

// GLB encodes the model as a binary glTF container.
func (m Model) GLB() []byte {
	var bin []byte
	for _, v := range m.Vertices {
		for _, c := range []float32{v.X, v.Y, v.Z} {
			bin = binary.LittleEndian.AppendUint32(bin, math.Float32bits(c))
		}
	}
	posLen := len(bin)

	attrs := map[string]int{"POSITION": 0}
	accessors := []gltf.Accessor{{BufferView: ptr(0), ComponentType: 5126, Count: len(m.Vertices), Type: "VEC3"}}
	views := []gltf.BufferView{{Buffer: 0, ByteLength: posLen}}

	if !m.NoBatchIDs {
		for _, v := range m.Vertices {
			bin = binary.LittleEndian.AppendUint16(bin, v.BatchID)
		}
		attrs["_BATCHID"] = 1
		accessors = append(accessors, gltf.Accessor{BufferView: ptr(1), ComponentType: 5123, Count: len(m.Vertices), Type: "SCALAR"})
		views = append(views, gltf.BufferView{Buffer: 0, ByteOffset: posLen, ByteLength: len(bin) - posLen})
	}

	doc := &gltf.Document{
		Asset:       gltf.Asset{Version: "2.0"},
		Scene:       ptr(0),
		Scenes:      []gltf.Scene{{Nodes: []int{0}}},
		Nodes:       []gltf.Node{{Mesh: ptr(0), Matrix: m.NodeMatrix}},
		Meshes:      []gltf.Mesh{{Primitives: []gltf.Primitive{{Attributes: attrs}}}},
		Accessors:   accessors,
		BufferViews: views,
		Buffers:     []gltf.Buffer{{ByteLength: len(bin)}},
	}
	if m.RTCCenter != nil {
		doc.Extensions = &gltf.Extensions{CesiumRTC: &gltf.CesiumRTC{Center: m.RTCCenter}}
	}

	out, err := gltf.EncodeGLB(codec.Default, doc, bin)
	if err != nil {
		panic(err)
	}
	return out
}

// Tile describes a b3dm payload.
type Tile struct {
	FeatureTable     map[string]any
	BatchTable       map[string]any
	BatchTableBinary []byte
	Model            []byte
}

// B3DM encodes the tile.
func (t Tile) B3DM() []byte {
	s := b3dm.Sections{
		FeatureTableJSON: padJSON(codec.MustMarshal(codec.Default, t.FeatureTable)),
		BatchTableBinary: t.BatchTableBinary,
		Model:            t.Model,
	}
	if t.BatchTable != nil {
		s.BatchTableJSON = padJSON(codec.MustMarshal(codec.Default, t.BatchTable))
	}
	return b3dm.Encode(s)
}

// Cluster returns a Z-up model whose vertices surround the earth-centred
// surface position of (lonDeg, latDeg), placed through RTC. Batch i is a
// vertical segment from the surface up to heights[i].
func Cluster(lonDeg, latDeg float64, heights ...float64) (Model, []float64) {
	lon, lat := geom.ToRadians(lonDeg), geom.ToRadians(latDeg)
	center := geom.WGS84.CartographicToCartesian(geom.Cartographic{Longitude: lon, Latitude: lat})
	up := geom.Vec3{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}

	var m Model
	for i, h := range heights {
		top := up.Scale(h)
		m.Vertices = append(m.Vertices,
			Vertex{BatchID: uint16(i)},
			Vertex{X: float32(top.X), Y: float32(top.Y), Z: float32(top.Z), BatchID: uint16(i)},
		)
	}
	return m, []float64{center.X, center.Y, center.Z}
}

func padJSON(b []byte) []byte {
	for len(b)%8 != 0 {
		b = append(b, ' ')
	}
	return b
}

func ptr(i int) *int { return &i }
