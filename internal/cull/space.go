package cull

import (
	"cullbsp/internal/geom"

	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"
)

// SpaceNode is one node of a spatial index as the cull tree sees it.
// Children of a leaf are ignored; a missing child is -1.
type SpaceNode struct {
	Bounds   geom.Bounds
	Leaf     bool
	Children [2]int32
}

// SpaceTree is the hierarchy of renderable bounds that a Culler harvests.
type SpaceTree interface {
	Root() int32
	IsEmpty() bool
	IsDisabled(id int32) bool
	Node(id int32) *SpaceNode
	// HarvestLeaves flattens a fully visible node: every node it visits is
	// set in total and every leaf it reaches is set in out.
	HarvestLeaves(id int32, total, out *bitset.BitSet)
}

// Culler answers visibility queries for a frame.
type Culler interface {
	BoundsVisible(b geom.Bounds) bool
	SphereVisible(center mgl32.Vec3, radius float32) bool
	// Harvest appends the visible leaf ids of space to out[:0], ascending.
	Harvest(space SpaceTree, out []int32) []int32
}

var (
	_ Culler = (*Tree)(nil)
	_ Culler = (*AlwaysVisible)(nil)
)

// AlwaysVisible is a Culler that rejects nothing.
type AlwaysVisible struct {
	total, output bitset.BitSet
}

// BoundsVisible always reports true.
func (a *AlwaysVisible) BoundsVisible(geom.Bounds) bool { return true }

// SphereVisible always reports true.
func (a *AlwaysVisible) SphereVisible(mgl32.Vec3, float32) bool { return true }

// Harvest returns every enabled leaf of space.
func (a *AlwaysVisible) Harvest(space SpaceTree, out []int32) []int32 {
	out = out[:0]
	if space == nil || space.IsEmpty() {
		return out
	}
	a.total.ClearAll()
	a.output.ClearAll()
	space.HarvestLeaves(space.Root(), &a.total, &a.output)
	return appendSetBits(out, &a.output)
}

func appendSetBits(out []int32, bits *bitset.BitSet) []int32 {
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		out = append(out, int32(i))
	}
	return out
}
