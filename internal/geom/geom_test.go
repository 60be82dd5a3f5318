package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestPlaneFromPoints(t *testing.T) {
	p, ok := PlaneFromPoints(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 1}, mgl32.Vec3{0, 1, 1})
	require.True(t, ok)
	require.InDelta(t, 1, p.Normal.Z(), 1e-6)
	require.InDelta(t, -1, p.Dist, 1e-6)
	require.InDelta(t, 2, p.Distance(mgl32.Vec3{5, 5, 3}), 1e-6)
	require.InDelta(t, -2, p.Flip().Distance(mgl32.Vec3{5, 5, 3}), 1e-6)

	_, ok = PlaneFromPoints(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2})
	require.False(t, ok)
}

func TestPlaneNormalize(t *testing.T) {
	p, ok := Plane{Normal: mgl32.Vec3{0, 3, 0}, Dist: 6}.Normalize()
	require.True(t, ok)
	require.InDelta(t, 1, p.Normal.Y(), 1e-6)
	require.InDelta(t, 2, p.Dist, 1e-6)

	_, ok = Plane{Dist: 1}.Normalize()
	require.False(t, ok)
}

func TestBoundsTestPlane(t *testing.T) {
	b := NewBounds(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, -1})
	require.Equal(t, mgl32.Vec3{-1, -1, -1}, b.Min)

	lo, hi := b.TestPlane(mgl32.Vec3{1, 0, 0})
	require.InDelta(t, -1, lo, 1e-6)
	require.InDelta(t, 1, hi, 1e-6)

	lo, hi = b.TestPlane(mgl32.Vec3{-1, 1, 0})
	require.InDelta(t, -2, lo, 1e-6)
	require.InDelta(t, 2, hi, 1e-6)
}

func TestBoundsUnion(t *testing.T) {
	var b Bounds
	require.False(t, b.IsNormal())
	b.Union(NewBounds(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}))
	b.Union(NewBounds(mgl32.Vec3{2, -1, 0}, mgl32.Vec3{3, 0, 1}))
	require.True(t, b.IsNormal())
	require.Equal(t, mgl32.Vec3{0, -1, 0}, b.Min)
	require.Equal(t, mgl32.Vec3{3, 1, 1}, b.Max)
	require.True(t, b.Contains(mgl32.Vec3{1.5, 0, 0.5}))

	b.Union(FullBounds())
	require.Equal(t, BoundsFull, b.Type)
	require.True(t, b.Contains(mgl32.Vec3{100, 100, 100}))
}

func TestSphere(t *testing.T) {
	c, r := Sphere([]mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}})
	require.InDelta(t, 0, c.Len(), 1e-6)
	require.InDelta(t, 1, r, 1e-6)
}
