package position

import (
	"fmt"
	"testing"

	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/gltf"
	"github.com/hupe1980/tilesindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel is a single root node (optionally with one child) whose mesh has
// one primitive.
type fakeModel struct {
	positions [][]float64
	batchIDs  []float64
	rootLocal geom.Mat4
	child     bool
}

func (f *fakeModel) RootNodes() []int { return []int{0} }

func (f *fakeModel) NodeChildren(node int) []int {
	if node == 0 && f.child {
		return []int{1}
	}
	return nil
}

func (f *fakeModel) NodeMatrix(node int) (geom.Mat4, error) {
	if node == 0 {
		return f.rootLocal, nil
	}
	return geom.Identity(), nil
}

func (f *fakeModel) NodeMesh(node int) (int, bool) {
	if f.child {
		return 0, node == 1
	}
	return 0, node == 0
}

func (f *fakeModel) Primitives(int) []gltf.Primitive {
	attrs := map[string]int{"POSITION": 0}
	if f.batchIDs != nil {
		attrs["_BATCHID"] = 1
	}
	return []gltf.Primitive{{Attributes: attrs}, {Attributes: map[string]int{"NORMAL": 2}}}
}

func (f *fakeModel) AccessorCount(accessor int) int {
	if accessor == 0 {
		return len(f.positions)
	}
	return len(f.batchIDs)
}

func (f *fakeModel) ReadValue(accessor, n int) ([]float64, error) {
	switch accessor {
	case 0:
		return f.positions[n], nil
	case 1:
		return []float64{f.batchIDs[n]}, nil
	default:
		return nil, fmt.Errorf("%w: accessor %d", model.ErrBinaryFormat, accessor)
	}
}

func (f *fakeModel) RTCCenter() ([3]float64, bool) { return [3]float64{}, false }

func ecef(lonDeg, latDeg, h float64) []float64 {
	p := geom.WGS84.CartographicToCartesian(geom.Cartographic{
		Longitude: geom.ToRadians(lonDeg),
		Latitude:  geom.ToRadians(latDeg),
		Height:    h,
	})
	return []float64{p.X, p.Y, p.Z}
}

func TestComputeGroupsByBatchID(t *testing.T) {
	m := &fakeModel{
		positions: [][]float64{
			ecef(10, 50, 5),
			ecef(10.002, 50.002, 30),
			ecef(-20, -10, -4),
			ecef(-20.004, -10, 12),
		},
		batchIDs:  []float64{0, 0, 1, 1},
		rootLocal: geom.Identity(),
	}

	got, err := Compute(m, geom.Identity())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.InDelta(t, 50.001, got[0].Latitude, 1e-9)
	assert.InDelta(t, 10.001, got[0].Longitude, 1e-9)
	// max(h) - max(0, min(h)) = 30 - 5
	assert.InDelta(t, 25, got[0].Height, 1e-6)

	assert.InDelta(t, -10, got[1].Latitude, 1e-9)
	assert.InDelta(t, -20.002, got[1].Longitude, 1e-9)
	// The lower bound clamps at zero: 12 - max(0, -4)
	assert.InDelta(t, 12, got[1].Height, 1e-6)
}

func TestComputeWithoutBatchIDs(t *testing.T) {
	center := ecef(0, 0, 0)
	m := &fakeModel{
		positions: [][]float64{{0, 0, 0}, {0, 10, 0}},
		rootLocal: geom.Identity(),
		child:     true,
	}

	// Y-up model: local +Y becomes world +Z, which points north at the
	// equator, so the feature stretches north and stays on the surface.
	base := geom.Translation(geom.Vec3FromSlice(center)).Mul(geom.YUpToZUp())

	got, err := Compute(m, base)
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.InDelta(t, 0, p.Longitude, 1e-9)
	assert.Greater(t, p.Latitude, 0.0)
	assert.Less(t, p.Latitude, 0.0001)
	assert.InDelta(t, 0, p.Height, 1e-4)
}

func TestComputeAppliesNodeHierarchy(t *testing.T) {
	top := geom.Vec3FromSlice(ecef(45, 0, 100))
	ground := geom.Vec3FromSlice(ecef(45, 0, 0)).Sub(top)

	tests := []struct {
		name       string
		positions  [][]float64
		wantHeight float64
	}{
		// A single vertex has no extent: max(h) - max(0, min(h)) = 0.
		{"single vertex", [][]float64{{0, 0, 0}}, 0},
		{"ground to top", [][]float64{{0, 0, 0}, {ground.X, ground.Y, ground.Z}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeModel{
				positions: tt.positions,
				rootLocal: geom.Translation(top),
				child:     true,
			}

			got, err := Compute(m, geom.Identity())
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, 45, got[0].Longitude, 1e-9)
			assert.InDelta(t, 0, got[0].Latitude, 1e-9)
			assert.InDelta(t, tt.wantHeight, got[0].Height, 1e-6)
		})
	}
}

func TestComputeDropsOrigin(t *testing.T) {
	m := &fakeModel{positions: [][]float64{{0, 0, 0}}, rootLocal: geom.Identity()}
	got, err := Compute(m, geom.Identity())
	require.NoError(t, err)
	assert.Empty(t, got)
}
