package cull

import (
	"cullbsp/internal/geom"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// PolyFlags describe how an occluder polygon takes part in culling.
type PolyFlags uint8

const (
	// PolyHole marks a subtractive polygon, such as a window cut into a wall.
	PolyHole PolyFlags = 1 << iota
	// PolyTwoSided marks an occluder that blocks from either face.
	PolyTwoSided
)

// planarSlack is how far a vertex may sit off the polygon plane before
// Validate rejects it.
const planarSlack = 0.05

// Poly is a convex occluder or hole polygon. Edge i runs from Verts[i] to
// Verts[(i+1)%len(Verts)]; Clipped[i] marks edges that must not produce a
// silhouette wall because a plane already bounds them.
type Poly struct {
	Verts   []mgl32.Vec3
	Clipped []bool
	Norm    mgl32.Vec3
	Dist    float32
	Center  mgl32.Vec3
	Radius  float32
	Flags   PolyFlags
}

// NewPoly copies verts into a new polygon and derives its plane and bounding
// sphere. Counter-clockwise winding seen from the front gives a normal that
// faces the viewer.
func NewPoly(verts []mgl32.Vec3, flags PolyFlags) *Poly {
	p := &Poly{
		Verts: append([]mgl32.Vec3(nil), verts...),
		Flags: flags,
	}
	p.InitFromVerts()
	return p
}

// InitFromVerts recomputes the normal, plane distance and bounding sphere.
func (p *Poly) InitFromVerts() {
	p.Clipped = resizeBools(p.Clipped, len(p.Verts))
	p.Center, p.Radius = geom.Sphere(p.Verts)

	var n mgl32.Vec3
	for i := range p.Verts {
		a := p.Verts[i].Sub(p.Center)
		b := p.Verts[(i+1)%len(p.Verts)].Sub(p.Center)
		n = n.Add(a.Cross(b))
	}
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	p.Norm = n
	p.Dist = -n.Dot(p.Center)
}

// Init copies src into p, reusing p's storage.
func (p *Poly) Init(src *Poly) {
	p.Verts = append(p.Verts[:0], src.Verts...)
	p.Clipped = append(p.Clipped[:0], src.Clipped...)
	p.Norm = src.Norm
	p.Dist = src.Dist
	p.Center = src.Center
	p.Radius = src.Radius
	p.Flags = src.Flags
}

// Plane returns the polygon's face plane.
func (p *Poly) Plane() geom.Plane {
	return geom.Plane{Normal: p.Norm, Dist: p.Dist}
}

// IsHole reports whether the polygon reopens part of a solid.
func (p *Poly) IsHole() bool { return p.Flags&PolyHole != 0 }

// IsTwoSided reports whether the polygon occludes from either side.
func (p *Poly) IsTwoSided() bool { return p.Flags&PolyTwoSided != 0 }

// Flip reverses the winding so the polygon faces the other way.
func (p *Poly) Flip() {
	n := len(p.Verts)
	for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
		p.Verts[l], p.Verts[r] = p.Verts[r], p.Verts[l]
	}
	// Edge k of the reversed ring is edge n-2-k of the original.
	if n > 1 && len(p.Clipped) == n {
		for l, r := 0, n-2; l < r; l, r = l+1, r-1 {
			p.Clipped[l], p.Clipped[r] = p.Clipped[r], p.Clipped[l]
		}
	}
	p.Norm = p.Norm.Mul(-1)
	p.Dist = -p.Dist
}

// ClearClipped marks every edge as able to produce a wall.
func (p *Poly) ClearClipped() {
	p.Clipped = resizeBools(p.Clipped, len(p.Verts))
	clear(p.Clipped)
}

// Validate reports why the polygon cannot be used as an occluder.
func (p *Poly) Validate() error {
	if len(p.Verts) < 3 {
		return errors.New("occluder polygon has too few vertices").
			WithTag("verts", len(p.Verts))
	}
	if len(p.Clipped) != len(p.Verts) {
		return errors.New("occluder polygon edge flags out of sync").
			WithTag("verts", len(p.Verts)).
			WithTag("edges", len(p.Clipped))
	}
	for i, v := range p.Verts {
		if geom.IsNaNVec(v) {
			return errors.New("occluder polygon has NaN vertex").WithTag("index", i)
		}
	}
	if l := p.Norm.Len(); l < 0.5 || geom.IsNaNVec(p.Norm) {
		return errors.New("occluder polygon is degenerate").WithTag("normal", p.Norm)
	}
	pl := p.Plane()
	for i, v := range p.Verts {
		if d := pl.Distance(v); d > planarSlack || d < -planarSlack {
			return errors.New("occluder polygon is not planar").
				WithTag("index", i).
				WithTag("offset", d)
		}
	}
	return nil
}

func resizeBools(b []bool, n int) []bool {
	if cap(b) < n {
		return make([]bool, n)
	}
	return b[:n]
}
