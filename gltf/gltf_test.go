package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

// triangle returns a buffer holding three VEC3 float positions followed by
// three UNSIGNED_SHORT batch ids (padded to 4 bytes) and a matching document.
func triangle() (*Document, []byte) {
	var bin []byte
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		bin = binary.LittleEndian.AppendUint32(bin, math.Float32bits(f))
	}
	for _, id := range []uint16{0, 1, 1} {
		bin = binary.LittleEndian.AppendUint16(bin, id)
	}
	bin = append(bin, 0, 0)

	doc := &Document{
		Asset:  Asset{Version: "2.0"},
		Scene:  intPtr(0),
		Scenes: []Scene{{Nodes: []int{0}}},
		Nodes: []Node{
			{Children: []int{1}, Translation: []float64{5, 0, 0}},
			{Mesh: intPtr(0), Matrix: []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 7, 1}},
		},
		Meshes: []Mesh{{Primitives: []Primitive{{Attributes: map[string]int{"POSITION": 0, "_BATCHID": 1}}}}},
		Accessors: []Accessor{
			{BufferView: intPtr(0), ComponentType: 5126, Count: 3, Type: "VEC3"},
			{BufferView: intPtr(1), ComponentType: 5123, Count: 3, Type: "SCALAR"},
		},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Buffers: []Buffer{{ByteLength: len(bin)}},
	}
	return doc, bin
}

func TestDecodeGLB(t *testing.T) {
	doc, bin := triangle()
	data, err := EncodeGLB(codec.Default, doc, bin)
	require.NoError(t, err)
	require.True(t, IsGLB(data))

	g, err := Decode(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, g.RootNodes())
	assert.Equal(t, []int{1}, g.NodeChildren(0))

	_, ok := g.NodeMesh(0)
	assert.False(t, ok)
	mesh, ok := g.NodeMesh(1)
	require.True(t, ok)

	prims := g.Primitives(mesh)
	require.Len(t, prims, 1)
	pos := prims[0].Attributes["POSITION"]
	ids := prims[0].Attributes["_BATCHID"]
	assert.Equal(t, 3, g.AccessorCount(pos))

	v, err := g.ReadValue(pos, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, v)

	id, err := g.ReadValue(ids, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, id)

	_, err = g.ReadValue(pos, 3)
	assert.ErrorIs(t, err, model.ErrBinaryFormat)

	m, err := g.NodeMatrix(0)
	require.NoError(t, err)
	assert.Equal(t, geom.Translation(geom.Vec3{X: 5}), m)

	m, err = g.NodeMatrix(1)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 1, Y: 2, Z: 10}, m.MulPoint(geom.Vec3{X: 1, Y: 2, Z: 3}))

	_, ok = g.RTCCenter()
	assert.False(t, ok)
}

func TestReadValueStride(t *testing.T) {
	doc, _ := triangle()
	// Interleave each position with 4 bytes of padding.
	var bin []byte
	for i := 0; i < 3; i++ {
		for _, f := range []float32{float32(i), float32(i * 2), float32(i * 3)} {
			bin = binary.LittleEndian.AppendUint32(bin, math.Float32bits(f))
		}
		bin = append(bin, 0xff, 0xff, 0xff, 0xff)
	}
	doc.BufferViews = []BufferView{{Buffer: 0, ByteLength: len(bin), ByteStride: 16}}
	doc.Accessors = doc.Accessors[:1]

	g := newGraph(doc, [][]byte{bin})
	v, err := g.ReadValue(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, v)
}

func TestReadValueUnsupportedType(t *testing.T) {
	doc, bin := triangle()
	doc.Accessors[0].Type = "VEC2"
	g := newGraph(doc, [][]byte{bin})

	_, err := g.ReadValue(0, 0)
	assert.ErrorIs(t, err, model.ErrBinaryFormat)
}

func TestDecodeGLBErrors(t *testing.T) {
	doc, bin := triangle()
	data, err := EncodeGLB(codec.Default, doc, bin)
	require.NoError(t, err)

	v1 := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(v1[4:8], 1)

	truncated := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(truncated[12:16], 1<<20)

	for name, payload := range map[string][]byte{
		"short":     data[:8],
		"version 1": v1,
		"truncated": truncated,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(payload, nil)
			assert.ErrorIs(t, err, model.ErrBinaryFormat)
		})
	}
}

func TestDecodeGLBSkipsUnknownChunks(t *testing.T) {
	doc, bin := triangle()
	data, err := EncodeGLB(codec.Default, doc, bin)
	require.NoError(t, err)

	jsonLen := binary.LittleEndian.Uint32(data[12:16])
	split := 12 + 8 + int(jsonLen)

	extra := binary.LittleEndian.AppendUint32(nil, 4)
	extra = binary.LittleEndian.AppendUint32(extra, 0x12345678)
	extra = append(extra, 1, 2, 3, 4)

	withExtra := append(append(append([]byte(nil), data[:split]...), extra...), data[split:]...)
	binary.LittleEndian.PutUint32(withExtra[8:12], uint32(len(withExtra)))

	g, err := Decode(withExtra, nil)
	require.NoError(t, err)
	v, err := g.ReadValue(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, v)
}

func TestDecodePlainJSON(t *testing.T) {
	doc, bin := triangle()
	doc.Buffers = []Buffer{
		{URI: "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin), ByteLength: len(bin)},
		{URI: "extra.bin", ByteLength: 4},
	}
	doc.Extensions = &Extensions{CesiumRTC: &CesiumRTC{Center: []float64{1, 2, 3}}}
	data := codec.MustMarshal(codec.Default, doc)

	var requested []string
	loader := func(uri string) ([]byte, error) {
		requested = append(requested, uri)
		return []byte{1, 2, 3, 4}, nil
	}

	g, err := Decode(data, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra.bin"}, requested)
	assert.Equal(t, bin, g.Buffers[0])

	c, ok := g.RTCCenter()
	require.True(t, ok)
	assert.Equal(t, [3]float64{1, 2, 3}, c)

	_, err = Decode(data, nil)
	assert.True(t, errors.Is(err, model.ErrMissingData))
}

func TestRootNodesWithoutScenes(t *testing.T) {
	g := newGraph(&Document{Nodes: []Node{{Children: []int{2}}, {}, {}}}, nil)
	assert.Equal(t, []int{0, 1}, g.RootNodes())
}
