package cull

import (
	"testing"

	"cullbsp/internal/geom"

	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// fakeSpace is a hand built hierarchy that records which ids were flattened.
type fakeSpace struct {
	nodes     []SpaceNode
	root      int32
	disabled  map[int32]bool
	harvested []int32
}

func (f *fakeSpace) Root() int32              { return f.root }
func (f *fakeSpace) IsEmpty() bool            { return f.root < 0 }
func (f *fakeSpace) IsDisabled(id int32) bool { return f.disabled[id] }
func (f *fakeSpace) Node(id int32) *SpaceNode { return &f.nodes[id] }

func (f *fakeSpace) HarvestLeaves(id int32, total, out *bitset.BitSet) {
	f.harvested = append(f.harvested, id)
	f.flatten(id, total, out)
}

func (f *fakeSpace) flatten(id int32, total, out *bitset.BitSet) {
	if id < 0 || f.disabled[id] || total.Test(uint(id)) {
		return
	}
	total.Set(uint(id))
	n := &f.nodes[id]
	if n.Leaf {
		out.Set(uint(id))
		return
	}
	f.flatten(n.Children[0], total, out)
	f.flatten(n.Children[1], total, out)
}

func leafAt(z float32) SpaceNode {
	return SpaceNode{
		Bounds:   geom.CenteredBounds(mgl32.Vec3{0, 0, z}, mgl32.Vec3{0.5, 0.5, 0.5}),
		Leaf:     true,
		Children: [2]int32{-1, -1},
	}
}

// pairSpace is two leaves at the given depths under one interior node.
func pairSpace(z0, z1 float32) *fakeSpace {
	a, b := leafAt(z0), leafAt(z1)
	parent := SpaceNode{Bounds: a.Bounds, Children: [2]int32{0, 1}}
	parent.Bounds.Union(b.Bounds)
	return &fakeSpace{nodes: []SpaceNode{a, b, parent}, root: 2}
}

func TestHarvestSplitVisitedOnce(t *testing.T) {
	// Both sides of the root see everything, so a straddling leaf reaches
	// the index through the outer side and is skipped on the inner one.
	tr := manualTree(zPlane(1000), zPlane(1000), withChildren(zPlane(0), 0, 1))
	space := &fakeSpace{nodes: []SpaceNode{leafAt(0)}, root: 0}

	ids := tr.Harvest(space, nil)
	require.Equal(t, []int32{0}, ids)
	require.Equal(t, []int32{0}, space.harvested)
}

func TestHarvestMixedChildren(t *testing.T) {
	tr := manualTree(zPlane(0))
	space := pairSpace(-5, 5)

	ids := tr.Harvest(space, nil)
	require.Equal(t, []int32{1}, ids)
	require.Equal(t, []int32{1}, space.harvested)
	require.Equal(t, 1, tr.Stats().Harvests)
	require.Equal(t, 1, tr.Stats().LeavesHarvested)
}

func TestHarvestCoalescesClearChildren(t *testing.T) {
	// The parent straddles as a whole, but both leaves are clear, so the
	// parent is flattened in one go.
	tr := manualTree(zPlane(0))
	space := pairSpace(1, 20)
	space.nodes[2].Bounds = geom.NewBounds(mgl32.Vec3{-0.5, -0.5, -0.2}, mgl32.Vec3{0.5, 0.5, 20.5})

	ids := tr.Harvest(space, nil)
	require.Equal(t, []int32{0, 1}, ids)
	require.Equal(t, []int32{2}, space.harvested)
}

func TestHarvestEmptyTree(t *testing.T) {
	tr := NewTree()
	space := pairSpace(-5, 5)

	ids := tr.Harvest(space, make([]int32, 3))
	require.Equal(t, []int32{0, 1}, ids)
	require.Equal(t, []int32{2}, space.harvested)

	require.Empty(t, tr.Harvest(&fakeSpace{root: -1}, ids))
	require.Empty(t, tr.Harvest(nil, ids))
}

func TestHarvestDisabled(t *testing.T) {
	tr := manualTree(zPlane(1000))
	space := pairSpace(-5, 5)
	space.disabled = map[int32]bool{0: true}

	require.Equal(t, []int32{1}, tr.Harvest(space, nil))

	space.disabled = map[int32]bool{2: true}
	space.harvested = nil
	require.Empty(t, tr.Harvest(space, nil))
	require.Empty(t, space.harvested)
}

func TestHarvestLeavesScratchClean(t *testing.T) {
	tr := manualTree(zPlane(1000), zPlane(-1000), withChildren(zPlane(0), 0, 1))
	space := pairSpace(-5, 0)

	// Leaf 0 is rescued by the inner side, leaf 1 straddles and is seen
	// through the inner side as well.
	require.Equal(t, []int32{0, 1}, tr.Harvest(space, nil))
	require.Empty(t, tr.scratch.clear)
	require.Empty(t, tr.scratch.split)
	require.Empty(t, tr.scratch.culled)
	require.Zero(t, tr.scratch.total.Count())
	require.Zero(t, tr.scratch.output.Count())
	require.False(t, tr.scratch.busy)
}

func TestAlwaysVisible(t *testing.T) {
	var av AlwaysVisible
	space := pairSpace(-5, 5)
	space.disabled = map[int32]bool{1: true}

	require.True(t, av.BoundsVisible(geom.Bounds{}))
	require.True(t, av.SphereVisible(mgl32.Vec3{}, 0))
	require.Equal(t, []int32{0}, av.Harvest(space, nil))
	require.Empty(t, av.Harvest(nil, nil))
}
