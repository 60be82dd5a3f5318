package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundsType tells whether a Bounds encloses nothing, a finite box or all of space.
type BoundsType uint8

const (
	BoundsEmpty BoundsType = iota
	BoundsNormal
	BoundsFull
)

// Bounds is an axis aligned box that also answers sphere and plane queries.
type Bounds struct {
	Min  mgl32.Vec3
	Max  mgl32.Vec3
	Type BoundsType
}

// NewBounds returns a normal box spanning the two corners in any order.
func NewBounds(a, b mgl32.Vec3) Bounds {
	return Bounds{
		Min:  mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Max:  mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])},
		Type: BoundsNormal,
	}
}

// CenteredBounds returns a normal box around center with the given half extents.
func CenteredBounds(center, half mgl32.Vec3) Bounds {
	return NewBounds(center.Sub(half), center.Add(half))
}

// FullBounds returns a bounds that contains everything.
func FullBounds() Bounds {
	return Bounds{Type: BoundsFull}
}

// IsNormal reports whether the box is finite and non-empty.
func (b Bounds) IsNormal() bool {
	return b.Type == BoundsNormal
}

// Center returns the box midpoint.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the radius of the sphere through the box corners.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Len() * 0.5
}

// Include grows the box to contain p.
func (b *Bounds) Include(p mgl32.Vec3) {
	switch b.Type {
	case BoundsFull:
		return
	case BoundsEmpty:
		b.Min, b.Max, b.Type = p, p, BoundsNormal
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o.
func (b *Bounds) Union(o Bounds) {
	switch {
	case o.Type == BoundsEmpty || b.Type == BoundsFull:
		return
	case o.Type == BoundsFull:
		b.Type = BoundsFull
		return
	}
	b.Include(o.Min)
	b.Include(o.Max)
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	switch b.Type {
	case BoundsEmpty:
		return false
	case BoundsFull:
		return true
	}
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// TestPlane returns the range of dot(n, p) over all points of the box.
// The plane offset is not applied.
func (b Bounds) TestPlane(n mgl32.Vec3) (lo, hi float32) {
	// Pick the box corners closest to and furthest along n.
	for i := 0; i < 3; i++ {
		if n[i] >= 0 {
			lo += n[i] * b.Min[i]
			hi += n[i] * b.Max[i]
		} else {
			lo += n[i] * b.Max[i]
			hi += n[i] * b.Min[i]
		}
	}
	return lo, hi
}

// Corners returns the eight box corners, bit i of the index selecting Max on axis i.
func (b Bounds) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				c[i][a] = b.Max[a]
			} else {
				c[i][a] = b.Min[a]
			}
		}
	}
	return c
}

// HasNaN reports whether either corner carries a NaN.
func (b Bounds) HasNaN() bool {
	return IsNaNVec(b.Min) || IsNaNVec(b.Max)
}

// Sphere returns the enclosing sphere of a set of points.
func Sphere(pts []mgl32.Vec3) (center mgl32.Vec3, radius float32) {
	if len(pts) == 0 {
		return center, 0
	}
	var bnd Bounds
	for _, p := range pts {
		bnd.Include(p)
	}
	center = bnd.Center()
	var r2 float32
	for _, p := range pts {
		d := p.Sub(center)
		r2 = max(r2, d.Dot(d))
	}
	return center, float32(math.Sqrt(float64(r2)))
}
