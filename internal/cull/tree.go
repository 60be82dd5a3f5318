package cull

import (
	"fmt"
	"strings"

	"cullbsp/internal/config"
	"cullbsp/internal/geom"
	"cullbsp/internal/profiling"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl32"
)

// Stats counts what happened to the tree since the last Reset.
type Stats struct {
	Nodes            int
	FrustumPlanes    int
	PolysOffered     int
	PolysAdded       int
	RejectedEdgeOn   int
	RejectedBackFace int
	RejectedHidden   int
	RejectedInvalid  int
	NodeLimitHits    int
	Harvests         int
	LeavesHarvested  int
}

// Tree is a BSP of frustum and occluder planes, rebuilt every frame.
//
// A frame goes Reset, InitFrustum, SetViewPos, AddPoly for each occluder
// (each solid directly followed by the holes cut into it, nearest solids
// first), then any number of queries. A hole offered while a nearer solid
// still lacks its own holes is rejected as hidden.
// A Tree is not safe for concurrent use and its calls are not reentrant.
type Tree struct {
	nodes      []Node
	root       int32
	numFrustum int32
	viewPos    mgl32.Vec3
	settings   config.Snapshot

	scratch scratch
	capture capture
	stats   Stats
}

// NewTree returns an empty tree using the current cull settings.
func NewTree() *Tree {
	t := &Tree{}
	t.Reset()
	return t
}

// Reset drops every node and rereads the cull settings. Storage is kept.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.root = noChild
	t.numFrustum = 0
	t.settings = config.GetSnapshot()
	t.scratch.releasePolys()
	t.scratch.resetLists()
	t.stats = Stats{}
}

// Root returns the index of the top node, or -1 when the tree is empty.
func (t *Tree) Root() int32 { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns node i. The pointer is invalidated by the next build call.
func (t *Tree) Node(i int32) *Node { return &t.nodes[i] }

// Stats returns the counters gathered since the last Reset.
func (t *Tree) Stats() Stats {
	s := t.stats
	s.Nodes = len(t.nodes)
	s.FrustumPlanes = int(t.numFrustum)
	return s
}

// SetViewPos sets the eye point that silhouette walls are built through.
func (t *Tree) SetViewPos(p mgl32.Vec3) { t.viewPos = p }

// ViewPos returns the current eye point.
func (t *Tree) ViewPos() mgl32.Vec3 { return t.viewPos }

// InitFrustum chains the clip planes of viewProj (left, right, bottom, top,
// near and, when enabled, far) so that each plane's outer child is the plane
// added before it. A point must be outside every plane to be visible.
// Any frustum or occluders already in the tree are dropped first; the
// counters keep running until Reset.
func (t *Tree) InitFrustum(viewProj mgl32.Mat4) {
	defer profiling.Track("cull.InitFrustum")()

	t.nodes = t.nodes[:0]
	t.root = noChild

	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	coeffs := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	count := len(coeffs)
	if !t.settings.CullFarPlane {
		count--
	}

	for i := 0; i < count; i++ {
		pl := geom.PlaneFromVec4(coeffs[i])
		if t.settings.NormalizeFrustum {
			var ok bool
			if pl, ok = pl.Normalize(); !ok {
				logs.Warn(errors.New("degenerate frustum plane skipped").WithTag("plane", i))
				continue
			}
		}
		if pl.IsNaN() {
			logs.Warn(errors.New("NaN frustum plane skipped").WithTag("plane", i))
			continue
		}
		n := newNode(pl)
		n.Outer = t.root
		t.root = t.appendNode(n)
	}
	t.numFrustum = int32(len(t.nodes))
}

// AddPoly folds one occluder or hole into the tree. The polygon is copied;
// the caller's value is never modified. Unusable polygons are dropped.
func (t *Tree) AddPoly(poly *Poly) {
	defer profiling.Track("cull.AddPoly")()
	t.stats.PolysOffered++

	if t.scratch.busy {
		logs.Warn(errors.New("reentrant AddPoly ignored"))
		return
	}
	if len(poly.Verts) < 3 {
		t.stats.RejectedInvalid++
		return
	}

	t.scratch.busy = true
	defer func() {
		t.scratch.releasePolys()
		t.scratch.busy = false
	}()

	work := t.scratch.getPoly()
	work.Init(poly)
	if len(work.Clipped) != len(work.Verts) {
		work.ClearClipped()
	}

	// Holes only open up visibility when seen from behind.
	dist := work.Plane().Distance(t.viewPos)
	if dist > -t.settings.Tolerance && dist < t.settings.Tolerance {
		t.stats.RejectedEdgeOn++
		return
	}
	if backFace := dist < 0; backFace != work.IsHole() {
		if !work.IsTwoSided() {
			t.stats.RejectedBackFace++
			return
		}
		work.Flip()
	}

	if !t.SphereVisible(work.Center, work.Radius) {
		t.stats.RejectedHidden++
		return
	}

	work.ClearClipped()
	if err := work.Validate(); err != nil {
		t.stats.RejectedInvalid++
		logs.WithTag("verts", len(work.Verts)).Debug(err)
		return
	}

	t.scratch.reservePolys(2 * len(t.nodes))

	nodes := len(t.nodes)
	if t.root < 0 {
		if !work.IsHole() {
			t.root = t.makeSubTree(work)
		}
	} else {
		t.addPolyRecur(work, t.root)
	}
	if len(t.nodes) > nodes {
		t.stats.PolysAdded++
	}
}

// addPolyRecur pushes poly down from node idx, growing new subtrees where a
// side has none yet. Solids never start an inner subtree and holes never
// start an outer one; holes may only start inner subtrees below occluder
// planes, not frustum planes.
func (t *Tree) addPolyRecur(poly *Poly, idx int32) {
	node := &t.nodes[idx]
	addInner := node.Inner >= 0 || (idx >= t.numFrustum && poly.IsHole())
	addOuter := !poly.IsHole() || node.Outer >= 0

	st, inner, outer := t.splitPoly(idx, poly)
	switch st {
	case Clear:
		t.addToChild(idx, outer, true, addOuter)
	case Culled:
		t.addToChild(idx, inner, false, addInner)
	case Split:
		t.addToChild(idx, inner, false, addInner)
		t.addToChild(idx, outer, true, addOuter)
	}
}

func (t *Tree) addToChild(idx int32, poly *Poly, outer, allowed bool) {
	if poly == nil {
		return
	}
	child := t.nodes[idx].Inner
	if outer {
		child = t.nodes[idx].Outer
	}
	if child >= 0 {
		t.addPolyRecur(poly, child)
		return
	}
	if !allowed {
		return
	}
	sub := t.makeSubTree(poly)
	// makeSubTree appends, so index again rather than holding a pointer.
	if outer {
		t.nodes[idx].Outer = sub
	} else {
		t.nodes[idx].Inner = sub
	}
}

// makeSubTree turns poly into a chain of silhouette walls ending in its face
// plane and returns the first wall. Solid walls chain through inner children,
// hole walls through outer children. Children always precede their parent in
// the node array.
func (t *Tree) makeSubTree(poly *Poly) int32 {
	n := len(poly.Verts)
	if len(t.nodes)+n+1 > t.settings.MaxNodes {
		t.stats.NodeLimitHits++
		logs.WithTag("nodes", len(t.nodes)).Debug("cull tree node limit reached")
		return noChild
	}
	hole := poly.IsHole()

	face := newNode(poly.Plane())
	face.IsFace = !hole
	last := t.appendNode(face)

	for i := n - 1; i >= 0; i-- {
		if poly.Clipped[i] {
			continue
		}
		// Winding puts the polygon interior on the inner side of the wall for
		// a front facing solid and on the outer side for a back facing hole.
		pl, ok := geom.PlaneFromPoints(t.viewPos, poly.Verts[i], poly.Verts[(i+1)%n])
		if !ok {
			continue
		}
		w := newNode(pl)
		if hole {
			w.Outer = last
		} else {
			w.Inner = last
		}
		last = t.appendNode(w)
	}

	t.capturePoly(poly)
	return last
}

func (t *Tree) appendNode(n Node) int32 {
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// probe is the volume handed down a bounds or sphere query.
type probe struct {
	bnd    *geom.Bounds
	center mgl32.Vec3
	radius float32
}

func (t *Tree) testLocal(n *Node, pr *probe) State {
	if pr.bnd != nil {
		return n.TestBounds(pr.bnd, t.settings.SafetyDist)
	}
	return n.TestSphere(pr.center, pr.radius, t.settings.SafetyDist)
}

// testRecur combines node idx's own verdict with its children's. Clear can
// only be refined by the outer side, Culled only by the inner side, and a
// Split volume is culled only if both sides cull it.
func (t *Tree) testRecur(idx int32, pr *probe) State {
	n := &t.nodes[idx]
	st := t.testLocal(n, pr)

	switch {
	case n.Inner < 0 && n.Outer < 0:
		return st
	case n.Inner < 0:
		if st == Culled {
			return Culled
		}
		return t.testRecur(n.Outer, pr)
	case n.Outer < 0:
		if st != Culled {
			return st
		}
		return t.testRecur(n.Inner, pr)
	}

	switch st {
	case Clear:
		return t.testRecur(n.Outer, pr)
	case Culled:
		return t.testRecur(n.Inner, pr)
	}
	if t.testRecur(n.Outer, pr) == Culled && t.testRecur(n.Inner, pr) == Culled {
		return Culled
	}
	return Split
}

// TestBounds classifies a box against the whole tree.
func (t *Tree) TestBounds(b *geom.Bounds) State {
	if t.root < 0 {
		return Clear
	}
	return t.testRecur(t.root, &probe{bnd: b})
}

// TestSphere classifies a sphere against the whole tree.
func (t *Tree) TestSphere(center mgl32.Vec3, radius float32) State {
	if t.root < 0 {
		return Clear
	}
	return t.testRecur(t.root, &probe{center: center, radius: radius})
}

// BoundsVisible reports whether any part of b may be visible.
func (t *Tree) BoundsVisible(b geom.Bounds) bool {
	return t.TestBounds(&b) != Culled
}

// SphereVisible reports whether any part of the sphere may be visible.
func (t *Tree) SphereVisible(center mgl32.Vec3, radius float32) bool {
	return t.TestSphere(center, radius) != Culled
}

// String dumps the node array, one node per line.
func (t *Tree) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cull tree: %d nodes, root %d, %d frustum planes\n", len(t.nodes), t.root, t.numFrustum)
	for i, n := range t.nodes {
		kind := "wall"
		switch {
		case int32(i) < t.numFrustum:
			kind = "frustum"
		case n.IsFace:
			kind = "face"
		}
		fmt.Fprintf(&sb, "%4d %-7s n=(%.3f %.3f %.3f) d=%.3f inner=%d outer=%d\n",
			i, kind, n.Normal[0], n.Normal[1], n.Normal[2], n.Dist, n.Inner, n.Outer)
	}
	return sb.String()
}
