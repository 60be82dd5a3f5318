package cull

import (
	"cullbsp/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// State classifies a volume against a plane or a whole subtree.
type State int8

const (
	// Clear: entirely on the outer, visible side.
	Clear State = iota
	// Culled: entirely on the inner, occluded side.
	Culled
	// Split: straddles the plane.
	Split
	// PureSplit: a spatial index leaf straddled the plane and cannot be refined.
	// Only used while harvesting.
	PureSplit
)

func (s State) String() string {
	switch s {
	case Clear:
		return "clear"
	case Culled:
		return "culled"
	case Split:
		return "split"
	case PureSplit:
		return "pure-split"
	}
	return "unknown"
}

// noChild marks an absent child index.
const noChild int32 = -1

// Node is one splitting plane of a cull tree. Children are indices into the
// owning tree's node array.
type Node struct {
	Normal mgl32.Vec3
	Dist   float32
	Inner  int32
	Outer  int32
	// IsFace marks the face plane that terminates a solid occluder's walls.
	IsFace bool
}

func newNode(pl geom.Plane) Node {
	return Node{Normal: pl.Normal, Dist: pl.Dist, Inner: noChild, Outer: noChild}
}

// Plane returns the node's splitting plane.
func (n *Node) Plane() geom.Plane {
	return geom.Plane{Normal: n.Normal, Dist: n.Dist}
}

// Distance returns the signed distance of p to the node's plane.
func (n *Node) Distance(p mgl32.Vec3) float32 {
	return n.Normal.Dot(p) + n.Dist
}

// IsLeaf reports whether the node has no refinement on either side.
func (n *Node) IsLeaf() bool {
	return n.Inner < 0 && n.Outer < 0
}

// TestSphere classifies a sphere against the plane. The sphere must sink more
// than -safety past the plane to be culled.
func (n *Node) TestSphere(center mgl32.Vec3, radius, safety float32) State {
	dist := n.Distance(center)
	if dist+radius < safety {
		return Culled
	}
	if dist-radius > 0 {
		return Clear
	}
	return Split
}

// TestBounds classifies a box against the plane. The enclosing sphere is
// tried first and the exact box interval only when the sphere straddles.
func (n *Node) TestBounds(b *geom.Bounds, safety float32) State {
	switch b.Type {
	case geom.BoundsEmpty:
		return Culled
	case geom.BoundsFull:
		return Split
	}
	if st := n.TestSphere(b.Center(), b.Radius(), safety); st != Split {
		return st
	}
	lo, hi := b.TestPlane(n.Normal)
	if hi+n.Dist < safety {
		return Culled
	}
	if lo+n.Dist > 0 {
		return Clear
	}
	return Split
}

// InterpVert returns where segment a-b meets the plane, as a parameter in
// [0,1] and a point. Degenerate or parallel segments snap to an endpoint.
func (n *Node) InterpVert(a, b mgl32.Vec3) (float32, mgl32.Vec3) {
	return interpDepths(a, b, n.Distance(a), n.Distance(b))
}

func interpDepths(a, b mgl32.Vec3, da, db float32) (float32, mgl32.Vec3) {
	denom := da - db
	if denom > -1e-6 && denom < 1e-6 {
		return 0, a
	}
	t := da / denom
	if t != t || t <= 0 {
		return 0, a
	}
	if t >= 1 {
		return 1, b
	}
	return t, a.Add(b.Sub(a).Mul(t))
}
