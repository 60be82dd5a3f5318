package cull

import (
	"cullbsp/internal/geom"
)

// splitPoly cuts poly along the plane of node idx. Clear hands back only an
// outer polygon, Culled only an inner one, Split both (either may be nil if
// its half degenerated). Returned polygons come from the scratch pool.
func (t *Tree) splitPoly(idx int32, poly *Poly) (State, *Poly, *Poly) {
	node := &t.nodes[idx]
	s := &t.scratch
	n := len(poly.Verts)
	s.sizeVerts(n)

	someInner, someOuter := false, false
	for i, v := range poly.Verts {
		d := node.Distance(v)
		s.depths[i] = d
		switch {
		case d < -t.settings.Tolerance:
			s.sides[i] = -1
			someInner = true
		case d > t.settings.Tolerance:
			s.sides[i] = 1
			someOuter = true
		default:
			s.sides[i] = 0
		}
	}

	switch {
	case !someInner && !someOuter:
		// Coplanar: belongs to both sides.
		in := s.getPoly()
		in.Init(poly)
		out := s.getPoly()
		out.Init(poly)
		return Split, in, out
	case !someInner:
		return Clear, nil, t.clipOnEdges(poly)
	case !someOuter:
		return Culled, t.clipOnEdges(poly), nil
	}

	s.ring = s.ring[:0]
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		clip := poly.Clipped[i]
		s.ring = append(s.ring, workVert{pos: poly.Verts[i], side: s.sides[i], clip: clip})
		if s.sides[i]*s.sides[j] < 0 {
			_, p := interpDepths(poly.Verts[i], poly.Verts[j], s.depths[i], s.depths[j])
			s.ring = append(s.ring, workVert{pos: p, side: 0, clip: clip})
		}
	}
	return Split, t.takeHalfPoly(poly, -1), t.takeHalfPoly(poly, 1)
}

// clipOnEdges copies poly, marking edges that lie in the plane just tested.
func (t *Tree) clipOnEdges(poly *Poly) *Poly {
	s := &t.scratch
	p := s.getPoly()
	p.Init(poly)
	n := len(p.Verts)
	for i := 0; i < n; i++ {
		if s.sides[i] == 0 && s.sides[(i+1)%n] == 0 {
			p.Clipped[i] = true
		}
	}
	return p
}

// takeHalfPoly walks the split ring once and keeps the vertices on the given
// side or on the plane. Nil when fewer than three vertices survive.
func (t *Tree) takeHalfPoly(src *Poly, keep int8) *Poly {
	s := &t.scratch
	m := len(s.ring)

	s.half = s.half[:0]
	for i := 0; i < m; i++ {
		w := s.ring[i]
		if w.side != keep && w.side != 0 {
			continue
		}
		next := s.ring[(i+1)%m]
		if (next.side != keep && next.side != 0) || (w.side == 0 && next.side == 0) {
			// Runs along the splitting plane.
			w.clip = true
		}
		s.half = append(s.half, w)
	}

	// Drop on-plane points sandwiched between on-plane neighbours; they are
	// collinear leftovers of the cut.
	h := len(s.half)
	s.kept = s.kept[:0]
	for i := 0; i < h; i++ {
		w := s.half[i]
		if w.side == 0 && s.half[(i+h-1)%h].side == 0 && s.half[(i+1)%h].side == 0 {
			continue
		}
		s.kept = append(s.kept, w)
	}
	if len(s.kept) < 3 {
		return nil
	}

	p := s.getPoly()
	p.Verts = p.Verts[:0]
	p.Clipped = p.Clipped[:0]
	for _, w := range s.kept {
		p.Verts = append(p.Verts, w.pos)
		p.Clipped = append(p.Clipped, w.clip)
	}
	p.Norm = src.Norm
	p.Dist = src.Dist
	p.Flags = src.Flags
	p.Center, p.Radius = geom.Sphere(p.Verts)
	return p
}
