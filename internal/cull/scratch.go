package cull

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"
)

// workVert is a vertex of the ring built while splitting a polygon. clip is
// the clipped flag of the edge leaving this vertex.
type workVert struct {
	pos  mgl32.Vec3
	side int8
	clip bool
}

// scratch is per-tree working storage reused across calls. Every recursive
// user must hand the index lists back at the length it found them.
type scratch struct {
	clear  []int32
	split  []int32
	culled []int32

	total  bitset.BitSet
	output bitset.BitSet

	polys     []*Poly
	usedPolys int

	depths []float32
	sides  []int8
	ring   []workVert
	half   []workVert
	kept   []workVert

	rootCand [1]int32
	busy     bool
}

// reservePolys makes sure n more polygons can be handed out without the pool growing.
func (s *scratch) reservePolys(n int) {
	for len(s.polys) < s.usedPolys+n {
		s.polys = append(s.polys, &Poly{})
	}
}

func (s *scratch) getPoly() *Poly {
	if s.usedPolys == len(s.polys) {
		s.polys = append(s.polys, &Poly{})
	}
	p := s.polys[s.usedPolys]
	s.usedPolys++
	return p
}

// releasePolys returns every handed out polygon to the pool.
func (s *scratch) releasePolys() {
	s.usedPolys = 0
}

// resetLists empties the harvest lists and bit vectors, keeping their storage.
func (s *scratch) resetLists() {
	s.clear = s.clear[:0]
	s.split = s.split[:0]
	s.culled = s.culled[:0]
	s.total.ClearAll()
	s.output.ClearAll()
}

func (s *scratch) sizeVerts(n int) {
	if cap(s.depths) < n {
		s.depths = make([]float32, n)
		s.sides = make([]int8, n)
	}
	s.depths = s.depths[:n]
	s.sides = s.sides[:n]
}
