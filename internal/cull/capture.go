package cull

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	solidColor = mgl32.Vec4{0.2, 0.4, 1.0, 0.5}
	holeColor  = mgl32.Vec4{1.0, 0.25, 0.2, 0.5}
)

// capture collects triangle fans of every polygon fragment that grew a
// subtree, for drawing the occluder volumes.
type capture struct {
	on     bool
	verts  []mgl32.Vec3
	norms  []mgl32.Vec3
	colors []mgl32.Vec4
	tris   []uint32
}

// BeginCapturePolys starts recording occluder geometry. Recording survives Reset.
func (t *Tree) BeginCapturePolys() { t.capture.on = true }

// EndCapturePolys stops recording; captured geometry stays until ReleaseCapture.
func (t *Tree) EndCapturePolys() { t.capture.on = false }

// IsCapturing reports whether occluder geometry is being recorded.
func (t *Tree) IsCapturing() bool { return t.capture.on }

// CaptureVerts returns the captured fragment vertices.
func (t *Tree) CaptureVerts() []mgl32.Vec3 { return t.capture.verts }

// CaptureNorms returns one face normal per captured vertex.
func (t *Tree) CaptureNorms() []mgl32.Vec3 { return t.capture.norms }

// CaptureColors returns one color per captured vertex, blue for solids and
// red for holes.
func (t *Tree) CaptureColors() []mgl32.Vec4 { return t.capture.colors }

// CaptureTris returns triangle indices into CaptureVerts.
func (t *Tree) CaptureTris() []uint32 { return t.capture.tris }

// ReleaseCapture discards the captured geometry.
func (t *Tree) ReleaseCapture() {
	t.capture.verts = t.capture.verts[:0]
	t.capture.norms = t.capture.norms[:0]
	t.capture.colors = t.capture.colors[:0]
	t.capture.tris = t.capture.tris[:0]
}

func (t *Tree) capturePoly(poly *Poly) {
	c := &t.capture
	if !c.on {
		return
	}
	col := solidColor
	if poly.IsHole() {
		col = holeColor
	}
	base := uint32(len(c.verts))
	for _, v := range poly.Verts {
		c.verts = append(c.verts, v)
		c.norms = append(c.norms, poly.Norm)
		c.colors = append(c.colors, col)
	}
	for i := 2; i < len(poly.Verts); i++ {
		c.tris = append(c.tris, base, base+uint32(i-1), base+uint32(i))
	}
}
