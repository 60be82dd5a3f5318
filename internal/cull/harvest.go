package cull

import (
	"cullbsp/internal/profiling"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Harvest appends to out[:0] the ids of every leaf of space that may be
// visible, in ascending order. No leaf is reported twice.
func (t *Tree) Harvest(space SpaceTree, out []int32) []int32 {
	defer profiling.Track("cull.Harvest")()
	out = out[:0]
	if space == nil || space.IsEmpty() {
		return out
	}
	s := &t.scratch
	if s.busy {
		logs.Warn(errors.New("reentrant Harvest ignored"))
		return out
	}
	s.busy = true
	defer func() { s.busy = false }()

	s.resetLists()
	if t.root < 0 {
		t.harvestLeaves(space, []int32{space.Root()})
	} else {
		s.rootCand[0] = space.Root()
		t.harvestRecur(space, t.root, s.rootCand[:])
	}

	out = appendSetBits(out, &s.output)
	t.stats.Harvests++
	t.stats.LeavesHarvested += len(out)
	s.resetLists()
	return out
}

// harvestRecur classifies the space nodes in cands against cull node idx and
// forwards each verdict to the child that can refine it, or harvests it when
// no such child exists. Split candidates go to both sides when both exist;
// the inner side skips anything the outer side already harvested.
func (t *Tree) harvestRecur(space SpaceTree, idx int32, cands []int32) {
	s := &t.scratch
	sClr, sSpl, sCul := len(s.clear), len(s.split), len(s.culled)

	for _, id := range cands {
		t.testNode(space, idx, id)
	}
	eClr, eSpl, eCul := len(s.clear), len(s.split), len(s.culled)
	// Three-index slices: callees append past our ends, never into them.
	clr := s.clear[sClr:eClr:eClr]
	spl := s.split[sSpl:eSpl:eSpl]
	cul := s.culled[sCul:eCul:eCul]

	node := t.nodes[idx]

	if len(clr) > 0 {
		if node.Outer >= 0 {
			t.harvestRecur(space, node.Outer, clr)
		} else {
			t.harvestLeaves(space, clr)
		}
	}

	if len(cul) > 0 && node.Inner >= 0 {
		t.harvestRecur(space, node.Inner, cul)
	}

	if len(spl) > 0 {
		switch {
		case node.Outer < 0:
			// Either a bare plane or inner-only: split counts as visible.
			t.harvestLeaves(space, spl)
		case node.Inner < 0:
			t.harvestRecur(space, node.Outer, spl)
		default:
			t.harvestRecur(space, node.Outer, spl)

			fStart := len(s.split)
			for _, id := range spl {
				if !s.total.Test(uint(id)) {
					s.split = append(s.split, id)
				}
			}
			if rest := s.split[fStart:len(s.split):len(s.split)]; len(rest) > 0 {
				t.harvestRecur(space, node.Inner, rest)
			}
		}
	}

	s.clear = s.clear[:sClr]
	s.split = s.split[:sSpl]
	s.culled = s.culled[:sCul]
}

// testNode sorts space node id into the clear, split or culled list for cull
// node idx. A straddling interior node is resolved through its children; if
// both children land on the same side they are merged back into id.
func (t *Tree) testNode(space SpaceTree, idx, id int32) State {
	s := &t.scratch
	if id < 0 {
		return Culled
	}
	sn := space.Node(id)
	if space.IsDisabled(id) || !sn.Bounds.IsNormal() {
		s.culled = append(s.culled, id)
		return Culled
	}

	switch t.nodes[idx].TestBounds(&sn.Bounds, t.settings.SafetyDist) {
	case Clear:
		s.clear = append(s.clear, id)
		return Clear
	case Culled:
		s.culled = append(s.culled, id)
		return Culled
	}

	if sn.Leaf {
		s.split = append(s.split, id)
		return PureSplit
	}

	nClr, nCul := len(s.clear), len(s.culled)
	c0 := t.testNode(space, idx, sn.Children[0])
	c1 := t.testNode(space, idx, sn.Children[1])
	switch {
	case c0 == Clear && c1 == Clear:
		s.clear = append(s.clear[:nClr], id)
		return Clear
	case c0 == Culled && c1 == Culled:
		s.culled = append(s.culled[:nCul], id)
		return Culled
	}
	return Split
}

// harvestLeaves hands fully visible space nodes to the index for flattening.
func (t *Tree) harvestLeaves(space SpaceTree, ids []int32) {
	s := &t.scratch
	for _, id := range ids {
		if s.total.Test(uint(id)) {
			continue
		}
		space.HarvestLeaves(id, &s.total, &s.output)
	}
}
