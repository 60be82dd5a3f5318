package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is an orbit camera: it looks at Target from Distance away, turned by
// Yaw around the vertical axis and tilted by Pitch, both in degrees.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

const (
	minPitch    = -89
	maxPitch    = 89
	minDistance = 1
)

func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.5,
		FarPlane:    1000.0,
		Distance:    50,
		Pitch:       20,
	}
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	dir := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

// Orbit turns the camera by the given angles in degrees.
func (c *Camera) Orbit(dyaw, dpitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dyaw), 360))
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, minPitch, maxPitch)
}

// Zoom scales the orbit distance; factors below one move closer.
func (c *Camera) Zoom(factor float32) {
	c.Distance = max(c.Distance*factor, minDistance)
}

// SetViewport updates the aspect ratio after a resize.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}
