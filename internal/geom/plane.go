package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the half-space dot(Normal, p) + Dist. Points with a negative value
// are on the inner side, points with a positive value on the outer side.
type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
}

// PlaneFromVec4 builds a plane from packed (a, b, c, d) coefficients, as
// produced by combining rows of a clip matrix.
func PlaneFromVec4(v mgl32.Vec4) Plane {
	return Plane{Normal: v.Vec3(), Dist: v.W()}
}

// PlaneFromPoints returns the plane through a, b and c with the normal
// (b-a) x (c-a). The second return is false when the points are collinear.
func PlaneFromPoints(a, b, c mgl32.Vec3) (Plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-12 || math.IsNaN(float64(l)) {
		return Plane{}, false
	}
	n = n.Mul(1 / l)
	return Plane{Normal: n, Dist: -n.Dot(a)}, true
}

// Distance returns the signed distance of p, scaled by the normal length.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Dist
}

// Flip returns the same plane with the inner and outer sides swapped.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), Dist: -p.Dist}
}

// Normalize scales the plane to a unit normal. A zero normal is returned
// unchanged with ok false.
func (p Plane) Normalize() (Plane, bool) {
	l := p.Normal.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return p, false
	}
	inv := 1 / l
	return Plane{Normal: p.Normal.Mul(inv), Dist: p.Dist * inv}, true
}

// IsNaN reports whether any coefficient is NaN.
func (p Plane) IsNaN() bool {
	return isNaN(p.Normal[0]) || isNaN(p.Normal[1]) || isNaN(p.Normal[2]) || isNaN(p.Dist)
}

func isNaN(f float32) bool {
	return f != f
}

// IsNaNVec reports whether any component of v is NaN.
func IsNaNVec(v mgl32.Vec3) bool {
	return isNaN(v[0]) || isNaN(v[1]) || isNaN(v[2])
}
