package cull

import (
	"strings"
	"testing"

	"cullbsp/internal/config"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// Camera at the origin looking down -Z with a 90 degree square frustum, so
// the visible half width at depth d is d.
func testViewProj() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func frustumTree() *Tree {
	t := NewTree()
	t.InitFrustum(testViewProj())
	t.SetViewPos(mgl32.Vec3{0, 0, 0})
	return t
}

// wallAt is a front facing square facing the origin at depth z.
func wallAt(x, y, z, half float32) *Poly {
	return NewPoly([]mgl32.Vec3{
		{x - half, y - half, z},
		{x + half, y - half, z},
		{x + half, y + half, z},
		{x - half, y + half, z},
	}, 0)
}

// holeAt is a back facing square at depth z, as a window cut into a wall.
func holeAt(x, y, z, half float32) *Poly {
	return NewPoly([]mgl32.Vec3{
		{x - half, y - half, z},
		{x - half, y + half, z},
		{x + half, y + half, z},
		{x + half, y - half, z},
	}, PolyHole)
}

func TestInitFrustum(t *testing.T) {
	tr := frustumTree()
	require.Equal(t, 6, tr.Len())
	require.Equal(t, int32(5), tr.Root())
	require.Equal(t, 6, tr.Stats().FrustumPlanes)

	// A linear chain through outer children.
	for i := int32(0); i < 6; i++ {
		n := tr.Node(i)
		require.Equal(t, noChild, n.Inner)
		require.Equal(t, i-1, n.Outer)
		require.InDelta(t, 1, n.Normal.Len(), 1e-5)
	}

	tests := []struct {
		name   string
		p      mgl32.Vec3
		expect State
	}{
		{"ahead", mgl32.Vec3{0, 0, -10}, Clear},
		{"ahead off axis", mgl32.Vec3{5, -5, -10}, Clear},
		{"before near", mgl32.Vec3{0, 0, -0.5}, Culled},
		{"beyond far", mgl32.Vec3{0, 0, -200}, Culled},
		{"behind", mgl32.Vec3{0, 0, 10}, Culled},
		{"right of frustum", mgl32.Vec3{50, 0, -10}, Culled},
		{"left of frustum", mgl32.Vec3{-50, 0, -10}, Culled},
		{"above frustum", mgl32.Vec3{0, 50, -10}, Culled},
		{"below frustum", mgl32.Vec3{0, -50, -10}, Culled},
		// The left plane is the leaf of the chain; a straddle elsewhere is
		// settled by the planes below it.
		{"on left plane", mgl32.Vec3{-10, 0, -10}, Split},
		{"on right plane", mgl32.Vec3{10, 0, -10}, Clear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, tr.TestSphere(tt.p, 0.1))
		})
	}
}

func TestInitFrustumWithoutFarPlane(t *testing.T) {
	defer config.SetCullFarPlane(config.GetCullFarPlane())
	config.SetCullFarPlane(false)

	tr := frustumTree()
	require.Equal(t, 5, tr.Len())
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -200}, 0.1))
}

func TestInitFrustumReplacesTree(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))
	require.Equal(t, 11, tr.Len())
	require.False(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1))

	tr.InitFrustum(testViewProj())
	require.Equal(t, 6, tr.Len())
	require.Equal(t, int32(5), tr.Root())
	require.Equal(t, 6, tr.Stats().FrustumPlanes)
	require.Equal(t, noChild, tr.Node(0).Outer)
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1), "old wall is gone")

	// Holes are only cut under occluder planes, so with no solid left the
	// window has nowhere to go.
	tr.AddPoly(holeAt(0, 0, -10, 1))
	require.Equal(t, 6, tr.Len())
}

func TestAddPolyOccludes(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))

	// Face plus four walls hang off the last frustum plane.
	require.Equal(t, 11, tr.Len())
	require.Equal(t, 1, tr.Stats().PolysAdded)
	require.Equal(t, int32(10), tr.Node(0).Outer)
	require.True(t, tr.Node(6).IsFace)
	for i := int32(7); i <= 10; i++ {
		require.Equal(t, i-1, tr.Node(i).Inner)
		require.Less(t, tr.Node(i).Inner, i)
	}

	require.False(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1), "behind the wall")
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -5}, 1), "in front of the wall")
	require.True(t, tr.SphereVisible(mgl32.Vec3{15, 0, -20}, 1), "beside the wall's shadow")
	require.True(t, tr.SphereVisible(mgl32.Vec3{10, 0, -20}, 1), "straddling the shadow edge")
	require.False(t, tr.SphereVisible(mgl32.Vec3{0, 0, 10}, 1), "behind the camera")
}

func TestAddPolyFacing(t *testing.T) {
	tr := frustumTree()

	back := wallAt(0, 0, -10, 5)
	back.Flip()
	tr.AddPoly(back)
	require.Equal(t, 6, tr.Len())
	require.Equal(t, 1, tr.Stats().RejectedBackFace)

	twoSided := wallAt(0, 0, -10, 5)
	twoSided.Flip()
	twoSided.Flags |= PolyTwoSided
	tr.AddPoly(twoSided)
	require.Equal(t, 11, tr.Len())
	require.False(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1))
	// The caller's polygon is left as it was.
	require.InDelta(t, -1, twoSided.Norm.Z(), 1e-6)

	edgeOn := NewPoly([]mgl32.Vec3{{0, -5, -5}, {0, -5, -15}, {0, 5, -15}, {0, 5, -5}}, 0)
	tr.AddPoly(edgeOn)
	require.Equal(t, 1, tr.Stats().RejectedEdgeOn)

	frontHole := wallAt(0, 0, -10, 1)
	frontHole.Flags |= PolyHole
	tr.AddPoly(frontHole)
	require.Equal(t, 2, tr.Stats().RejectedBackFace)
	require.Equal(t, 11, tr.Len())
}

func TestAddPolyHidden(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))
	n := tr.Len()

	tr.AddPoly(wallAt(0, 0, -20, 1))
	require.Equal(t, n, tr.Len())
	require.Equal(t, 1, tr.Stats().RejectedHidden)

	tr.AddPoly(wallAt(0, 0, -200, 1))
	require.Equal(t, 2, tr.Stats().RejectedHidden)
}

func TestAddPolyInvalid(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(NewPoly([]mgl32.Vec3{{0, 0, -10}, {1, 0, -10}}, 0))
	bent := NewPoly([]mgl32.Vec3{{-1, -1, -10}, {1, -1, -10}, {1, 1, -12}, {-1, 1, -10}}, 0)
	tr.AddPoly(bent)
	require.Equal(t, 2, tr.Stats().RejectedInvalid)
	require.Equal(t, 6, tr.Len())
}

func TestAddPolyClippedByFrustum(t *testing.T) {
	tr := frustumTree()
	// Sticks out past the right plane; only the visible part is kept and the
	// cut edge gets no wall of its own.
	tr.AddPoly(NewPoly([]mgl32.Vec3{{0, -5, -10}, {30, -5, -10}, {30, 5, -10}, {0, 5, -10}}, 0))
	require.Equal(t, 10, tr.Len())
	require.Equal(t, noChild, tr.Node(1).Inner)
	require.False(t, tr.SphereVisible(mgl32.Vec3{10, 0, -30}, 1))
}

func TestAddPolyHole(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))
	solid := tr.Len()

	// A hole on its own never opens up anything under a frustum plane.
	lone := frustumTree()
	lone.AddPoly(holeAt(0, 0, -10, 1))
	require.Equal(t, 6, lone.Len())

	tr.AddPoly(holeAt(0, 0, -10, 1))
	require.Greater(t, tr.Len(), solid)
	face := tr.Node(6)
	require.True(t, face.IsFace)
	require.GreaterOrEqual(t, face.Inner, int32(solid))
	require.Equal(t, noChild, face.Outer)

	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -30}, 0.5), "through the window")
	require.False(t, tr.SphereVisible(mgl32.Vec3{4.5, 0, -30}, 0.5), "behind the wall beside the window")
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -5}, 0.5), "in front of the wall")
}

func TestAddPolyWithoutFrustum(t *testing.T) {
	tr := NewTree()
	tr.AddPoly(holeAt(0, 0, -10, 1))
	require.Equal(t, int32(-1), tr.Root())

	tr.AddPoly(wallAt(0, 0, -10, 5))
	require.Equal(t, 5, tr.Len())
	require.False(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1))
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, 20}, 1))
}

func TestNodeLimit(t *testing.T) {
	defer config.SetMaxNodes(config.GetMaxNodes())
	config.SetMaxNodes(64)

	tr := frustumTree()
	for i := 0; i < 20; i++ {
		tr.AddPoly(wallAt(float32(i*4-40), 0, -50, 1))
	}
	require.LessOrEqual(t, tr.Len(), 64)
	require.Positive(t, tr.Stats().NodeLimitHits)
	require.Equal(t, 20, tr.Stats().PolysOffered)
}

func TestResetIdempotent(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))

	tr.Reset()
	tr.Reset()
	require.Equal(t, 0, tr.Len())
	require.Equal(t, int32(-1), tr.Root())
	require.Equal(t, Stats{}, tr.Stats())
	require.True(t, tr.SphereVisible(mgl32.Vec3{0, 0, -20}, 1))
}

func TestCapturePolys(t *testing.T) {
	tr := frustumTree()
	tr.BeginCapturePolys()
	require.True(t, tr.IsCapturing())
	tr.AddPoly(wallAt(0, 0, -10, 5))
	tr.EndCapturePolys()
	tr.AddPoly(wallAt(20, 0, -30, 1))

	require.Len(t, tr.CaptureVerts(), 4)
	require.Len(t, tr.CaptureNorms(), 4)
	require.Len(t, tr.CaptureColors(), 4)
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, tr.CaptureTris())
	require.Equal(t, solidColor, tr.CaptureColors()[0])

	tr.Reset()
	require.Len(t, tr.CaptureVerts(), 4)

	tr.ReleaseCapture()
	require.Empty(t, tr.CaptureVerts())
	require.Empty(t, tr.CaptureTris())
}

func TestTreeString(t *testing.T) {
	tr := frustumTree()
	tr.AddPoly(wallAt(0, 0, -10, 5))
	s := tr.String()
	require.True(t, strings.HasPrefix(s, "cull tree: 11 nodes, root 5, 6 frustum planes"))
	require.Contains(t, s, "face")
	require.Contains(t, s, "frustum")
}
