package gltf

import (
	"fmt"

	"github.com/hupe1980/tilesindex/datatype"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/model"
)

// Model is the read-only view of a decoded scene graph that position
// computation depends on.
type Model interface {
	// RootNodes returns the nodes of the default scene.
	RootNodes() []int
	NodeChildren(node int) []int
	// NodeMatrix returns the local transform of a node.
	NodeMatrix(node int) (geom.Mat4, error)
	NodeMesh(node int) (int, bool)
	Primitives(mesh int) []Primitive
	AccessorCount(accessor int) int
	// ReadValue returns element n of an accessor. Only SCALAR and VEC3
	// accessors are supported.
	ReadValue(accessor, n int) ([]float64, error)
	// RTCCenter returns the CESIUM_RTC centre, if any.
	RTCCenter() ([3]float64, bool)
}

// Graph is a decoded glTF document with its buffers resolved.
type Graph struct {
	Doc     *Document
	Buffers [][]byte
}

var _ Model = (*Graph)(nil)

func newGraph(doc *Document, buffers [][]byte) *Graph {
	return &Graph{Doc: doc, Buffers: buffers}
}

// RootNodes returns the nodes of the default scene. Without scenes every
// node that is nobody's child is a root.
func (g *Graph) RootNodes() []int {
	doc := g.Doc
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	roots := make([]int, 0, len(doc.Nodes))
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// NodeChildren returns the children of node.
func (g *Graph) NodeChildren(node int) []int {
	if node < 0 || node >= len(g.Doc.Nodes) {
		return nil
	}
	return g.Doc.Nodes[node].Children
}

// NodeMatrix returns the node matrix, or the TRS composition when the node
// has no matrix.
func (g *Graph) NodeMatrix(node int) (geom.Mat4, error) {
	if node < 0 || node >= len(g.Doc.Nodes) {
		return geom.Mat4{}, fmt.Errorf("%w: node %d out of range", model.ErrBinaryFormat, node)
	}
	n := g.Doc.Nodes[node]
	if len(n.Matrix) > 0 {
		return geom.FromColumnMajor(n.Matrix)
	}
	if n.Translation == nil && n.Rotation == nil && n.Scale == nil {
		return geom.Identity(), nil
	}

	t := geom.Vec3{}
	if len(n.Translation) == 3 {
		t = geom.Vec3FromSlice(n.Translation)
	}
	q := [4]float64{0, 0, 0, 1}
	if len(n.Rotation) == 4 {
		copy(q[:], n.Rotation)
	}
	s := geom.Vec3{X: 1, Y: 1, Z: 1}
	if len(n.Scale) == 3 {
		s = geom.Vec3FromSlice(n.Scale)
	}
	return geom.FromTRS(t, q, s), nil
}

// NodeMesh returns the mesh index of node, if it has one.
func (g *Graph) NodeMesh(node int) (int, bool) {
	if node < 0 || node >= len(g.Doc.Nodes) || g.Doc.Nodes[node].Mesh == nil {
		return 0, false
	}
	m := *g.Doc.Nodes[node].Mesh
	if m < 0 || m >= len(g.Doc.Meshes) {
		return 0, false
	}
	return m, true
}

// Primitives returns the primitives of mesh.
func (g *Graph) Primitives(mesh int) []Primitive {
	if mesh < 0 || mesh >= len(g.Doc.Meshes) {
		return nil
	}
	return g.Doc.Meshes[mesh].Primitives
}

// AccessorCount returns the element count of accessor.
func (g *Graph) AccessorCount(accessor int) int {
	if accessor < 0 || accessor >= len(g.Doc.Accessors) {
		return 0
	}
	return g.Doc.Accessors[accessor].Count
}

// ReadValue reads element n of accessor. The element starts at
// accessor.byteOffset + n*stride inside the buffer view, where stride is the
// buffer view's byteStride or the tightly packed element size.
func (g *Graph) ReadValue(accessor, n int) ([]float64, error) {
	doc := g.Doc
	if accessor < 0 || accessor >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", model.ErrBinaryFormat, accessor)
	}
	a := doc.Accessors[accessor]

	var comps int
	switch datatype.ElementType(a.Type) {
	case datatype.Scalar:
		comps = 1
	case datatype.Vec3:
		comps = 3
	default:
		return nil, fmt.Errorf("%w: accessor %d has unsupported type %q", model.ErrBinaryFormat, accessor, a.Type)
	}
	ct, err := datatype.ComponentTypeFromCode(a.ComponentType)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessor, err)
	}
	if n < 0 || n >= a.Count {
		return nil, fmt.Errorf("%w: element %d of accessor %d with count %d", model.ErrBinaryFormat, n, accessor, a.Count)
	}

	out := make([]float64, comps)
	if a.BufferView == nil {
		// Accessors without a buffer view are zero-initialised.
		return out, nil
	}
	if *a.BufferView < 0 || *a.BufferView >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: accessor %d references buffer view %d", model.ErrBinaryFormat, accessor, *a.BufferView)
	}
	bv := doc.BufferViews[*a.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(g.Buffers) {
		return nil, fmt.Errorf("%w: buffer view %d references buffer %d", model.ErrBinaryFormat, *a.BufferView, bv.Buffer)
	}
	buf := g.Buffers[bv.Buffer]

	size := ct.Size()
	stride := bv.ByteStride
	if stride == 0 {
		stride = size * comps
	}

	start := bv.ByteOffset + a.ByteOffset + n*stride
	end := start + size*comps
	viewEnd := bv.ByteOffset + bv.ByteLength
	if bv.ByteLength == 0 {
		viewEnd = len(buf)
	}
	if start < 0 || end > viewEnd || end > len(buf) {
		return nil, fmt.Errorf("%w: accessor %d element %d [%d,%d) exceeds buffer view", model.ErrBinaryFormat, accessor, n, start, end)
	}

	for i := range out {
		out[i] = ct.Read(buf[start+i*size:])
	}
	return out, nil
}

// RTCCenter returns extensions.CESIUM_RTC.center.
func (g *Graph) RTCCenter() ([3]float64, bool) {
	var c [3]float64
	ext := g.Doc.Extensions
	if ext == nil || ext.CesiumRTC == nil || len(ext.CesiumRTC.Center) < 3 {
		return c, false
	}
	copy(c[:], ext.CesiumRTC.Center)
	return c, true
}
