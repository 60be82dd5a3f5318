package spacetree

import (
	"sort"

	"cullbsp/internal/cull"
	"cullbsp/internal/geom"

	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"
)

// Tree is a binary bounding volume hierarchy over a fixed set of leaves.
// Leaf i has node id i; interior nodes follow the leaves.
type Tree struct {
	nodes     []cull.SpaceNode
	parents   []int32
	disabled  bitset.BitSet
	root      int32
	numLeaves int
}

var _ cull.SpaceTree = (*Tree)(nil)

// New builds a hierarchy over leaves by median split on the longest axis of
// the leaf centers.
func New(leaves []geom.Bounds) *Tree {
	n := len(leaves)
	t := &Tree{
		nodes:     make([]cull.SpaceNode, n, max(2*n-1, 0)),
		parents:   make([]int32, n, max(2*n-1, 0)),
		root:      -1,
		numLeaves: n,
	}
	if n == 0 {
		return t
	}
	ids := make([]int32, n)
	for i, b := range leaves {
		t.nodes[i] = cull.SpaceNode{Bounds: b, Leaf: true, Children: [2]int32{-1, -1}}
		t.parents[i] = -1
		ids[i] = int32(i)
	}
	t.root = t.build(ids)
	return t
}

func (t *Tree) build(ids []int32) int32 {
	if len(ids) == 1 {
		return ids[0]
	}

	var centers geom.Bounds
	for _, id := range ids {
		centers.Include(t.center(id))
	}
	ext := centers.Max.Sub(centers.Min)
	axis := 0
	if ext[1] > ext[axis] {
		axis = 1
	}
	if ext[2] > ext[axis] {
		axis = 2
	}
	sort.Slice(ids, func(i, j int) bool {
		return t.center(ids[i])[axis] < t.center(ids[j])[axis]
	})

	mid := len(ids) / 2
	left := t.build(ids[:mid])
	right := t.build(ids[mid:])

	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, cull.SpaceNode{Children: [2]int32{left, right}})
	t.parents = append(t.parents, -1)
	t.parents[left] = id
	t.parents[right] = id
	t.refit(id)
	return id
}

func (t *Tree) center(id int32) mgl32.Vec3 {
	b := t.nodes[id].Bounds
	if !b.IsNormal() {
		return mgl32.Vec3{}
	}
	return b.Center()
}

func (t *Tree) refit(id int32) {
	n := &t.nodes[id]
	var b geom.Bounds
	for _, c := range n.Children {
		if c >= 0 {
			b.Union(t.nodes[c].Bounds)
		}
	}
	n.Bounds = b
}

// Root returns the top node, or -1 for a tree without leaves.
func (t *Tree) Root() int32 { return t.root }

// IsEmpty reports whether the tree has no leaves.
func (t *Tree) IsEmpty() bool { return t.root < 0 }

// Len returns the number of nodes, leaves included.
func (t *Tree) Len() int { return len(t.nodes) }

// NumLeaves returns the number of leaves; their ids are 0..NumLeaves-1.
func (t *Tree) NumLeaves() int { return t.numLeaves }

// Node returns node id. The pointer stays valid for the life of the tree.
func (t *Tree) Node(id int32) *cull.SpaceNode { return &t.nodes[id] }

// Parent returns the parent of id, or -1 for the root.
func (t *Tree) Parent(id int32) int32 { return t.parents[id] }

// IsDisabled reports whether id was switched off by SetDisabled.
func (t *Tree) IsDisabled(id int32) bool { return t.disabled.Test(uint(id)) }

// SetDisabled switches a node, and so its whole subtree, off or on.
func (t *Tree) SetDisabled(id int32, on bool) {
	t.disabled.SetTo(uint(id), on)
}

// MoveLeaf replaces the bounds of leaf id and refits its ancestors.
func (t *Tree) MoveLeaf(id int32, b geom.Bounds) {
	t.nodes[id].Bounds = b
	for p := t.parents[id]; p >= 0; p = t.parents[p] {
		t.refit(p)
	}
}

// HarvestLeaves marks id and every enabled node below it in total and every
// enabled leaf below it in out. Nodes already in total are skipped.
func (t *Tree) HarvestLeaves(id int32, total, out *bitset.BitSet) {
	if id < 0 || t.IsDisabled(id) || total.Test(uint(id)) {
		return
	}
	total.Set(uint(id))
	n := &t.nodes[id]
	if n.Leaf {
		out.Set(uint(id))
		return
	}
	t.HarvestLeaves(n.Children[0], total, out)
	t.HarvestLeaves(n.Children[1], total, out)
}
