// Package position derives one geographic position per batch id from the
// vertices of a decoded model.
package position

import (
	"fmt"
	"math"

	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/gltf"
	"github.com/hupe1980/tilesindex/model"
)

const (
	attrPosition = "POSITION"
	attrBatchID  = "_BATCHID"
)

type frame struct {
	node   int
	matrix geom.Mat4
}

// Compute walks every node reachable from the model's roots, transforms each
// vertex by base composed with the node's root-to-node matrix and groups the
// resulting cartographic positions by batch id. Vertices without a _BATCHID
// attribute belong to batch 0.
//
// Each batch id gets the centre of the rectangle enclosing its vertices and a
// height of max(h) - max(0, min(h)).
func Compute(m gltf.Model, base geom.Mat4) (map[int]model.Position, error) {
	groups, err := collect(m, base, geom.WGS84)
	if err != nil {
		return nil, err
	}

	out := make(map[int]model.Position, len(groups))
	for batchID, points := range groups {
		out[batchID] = summarize(points)
	}
	return out, nil
}

func collect(m gltf.Model, base geom.Mat4, e *geom.Ellipsoid) (map[int][]geom.Cartographic, error) {
	groups := make(map[int][]geom.Cartographic)
	visited := make(map[int]bool)

	roots := m.RootNodes()
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		local, err := m.NodeMatrix(roots[i])
		if err != nil {
			return nil, err
		}
		stack = append(stack, frame{node: roots[i], matrix: local})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.node] {
			continue
		}
		visited[f.node] = true

		if mesh, ok := m.NodeMesh(f.node); ok {
			world := base.Mul(f.matrix)
			for _, prim := range m.Primitives(mesh) {
				if err := collectPrimitive(m, prim, world, e, groups); err != nil {
					return nil, fmt.Errorf("node %d: %w", f.node, err)
				}
			}
		}

		children := m.NodeChildren(f.node)
		for i := len(children) - 1; i >= 0; i-- {
			local, err := m.NodeMatrix(children[i])
			if err != nil {
				return nil, err
			}
			stack = append(stack, frame{node: children[i], matrix: f.matrix.Mul(local)})
		}
	}
	return groups, nil
}

func collectPrimitive(m gltf.Model, prim gltf.Primitive, world geom.Mat4, e *geom.Ellipsoid, groups map[int][]geom.Cartographic) error {
	posAcc, ok := prim.Attributes[attrPosition]
	if !ok {
		return nil
	}
	batchAcc, hasBatch := prim.Attributes[attrBatchID]

	count := m.AccessorCount(posAcc)
	for i := 0; i < count; i++ {
		batchID := 0
		if hasBatch {
			v, err := m.ReadValue(batchAcc, i)
			if err != nil {
				return err
			}
			if math.IsNaN(v[0]) || v[0] < 0 {
				continue
			}
			batchID = int(v[0])
		}

		v, err := m.ReadValue(posAcc, i)
		if err != nil {
			return err
		}
		if len(v) < 3 {
			return fmt.Errorf("%w: POSITION accessor %d is not VEC3", model.ErrBinaryFormat, posAcc)
		}

		p := world.MulPoint(geom.Vec3{X: v[0], Y: v[1], Z: v[2]})
		carto, ok := e.CartesianToCartographic(p)
		if !ok {
			continue
		}
		groups[batchID] = append(groups[batchID], carto)
	}
	return nil
}

// summarize reduces the vertices of one feature to a single position. The
// height clamps only the lower bound at zero.
func summarize(points []geom.Cartographic) model.Position {
	minH, maxH := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minH = math.Min(minH, p.Height)
		maxH = math.Max(maxH, p.Height)
	}

	c := geom.RectangleFromCartographics(points).Center()
	return model.Position{
		Latitude:  geom.ToDegrees(c.Latitude),
		Longitude: geom.ToDegrees(c.Longitude),
		Height:    maxH - math.Max(0, minH),
	}
}
