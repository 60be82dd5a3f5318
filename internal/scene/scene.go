// Package scene describes a cull test scene: renderable objects, occluder
// polygons and a camera, loaded from JSON or generated.
package scene

import (
	"math"
	"os"
	"sort"

	"cullbsp/internal/cull"
	"cullbsp/internal/geom"
	"cullbsp/internal/spacetree"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"
)

// Camera is a perspective camera. With a Path the eye walks the path over a
// run of frames; without one it orbits Target at its starting distance.
type Camera struct {
	Eye    mgl32.Vec3   `json:"eye"`
	Target mgl32.Vec3   `json:"target"`
	Up     mgl32.Vec3   `json:"up,omitempty"`
	FovY   float32      `json:"fov,omitempty"`
	Aspect float32      `json:"aspect,omitempty"`
	Near   float32      `json:"near,omitempty"`
	Far    float32      `json:"far,omitempty"`
	Path   []mgl32.Vec3 `json:"path,omitempty"`
}

// Object is a renderable represented by its axis aligned box.
type Object struct {
	Name string     `json:"name,omitempty"`
	Min  mgl32.Vec3 `json:"min"`
	Max  mgl32.Vec3 `json:"max"`
}

// Occluder is a convex planar polygon. Solids block what is behind them;
// holes reopen part of a solid they lie in. A hole belongs to the closest
// solid listed before it.
type Occluder struct {
	Verts    []mgl32.Vec3 `json:"verts"`
	Hole     bool         `json:"hole,omitempty"`
	TwoSided bool         `json:"twoSided,omitempty"`
}

type Scene struct {
	Camera    Camera     `json:"camera"`
	Objects   []Object   `json:"objects"`
	Occluders []Occluder `json:"occluders"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading scene file failed").
			WithTag("path", path).
			Wrap(err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.New("loading scene failed").
			WithTag("path", path).
			Wrap(err)
	}
	return s, nil
}

// Parse decodes and checks a JSON scene, filling camera defaults.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New("decoding scene failed").Wrap(err)
	}
	s.Camera.setDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes the scene as indented JSON.
func (s *Scene) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Validate reports the first object or occluder that cannot be used.
func (s *Scene) Validate() error {
	c := s.Camera
	if c.Near <= 0 || c.Far <= c.Near {
		return errors.New("invalid camera clip range").
			WithTag("near", c.Near).
			WithTag("far", c.Far)
	}
	if c.Eye.ApproxEqual(c.Target) {
		return errors.New("camera eye and target coincide")
	}
	for i, o := range s.Objects {
		if o.Min.X() > o.Max.X() || o.Min.Y() > o.Max.Y() || o.Min.Z() > o.Max.Z() {
			return errors.New("object bounds are inverted").
				WithTag("index", i).
				WithTag("name", o.Name)
		}
	}
	for i, o := range s.Occluders {
		if o.Hole && i == 0 {
			return errors.New("hole listed before any solid").
				WithTag("index", i)
		}
		if err := o.Poly().Validate(); err != nil {
			return errors.New("invalid occluder").
				WithTag("index", i).
				Wrap(err)
		}
	}
	return nil
}

// Bounds returns one box per object, indexed like Objects.
func (s *Scene) Bounds() []geom.Bounds {
	leaves := make([]geom.Bounds, len(s.Objects))
	for i, o := range s.Objects {
		leaves[i] = geom.NewBounds(o.Min, o.Max)
	}
	return leaves
}

// Space builds a bounding volume hierarchy whose leaf ids are object indices.
func (s *Scene) Space() *spacetree.Tree {
	return spacetree.New(s.Bounds())
}

// Poly converts the occluder into a cull polygon.
func (o Occluder) Poly() *cull.Poly {
	var flags cull.PolyFlags
	if o.Hole {
		flags |= cull.PolyHole
	}
	if o.TwoSided {
		flags |= cull.PolyTwoSided
	}
	return cull.NewPoly(o.Verts, flags)
}

// Group is a solid occluder and the holes cut into it. A group is added to
// the cull tree as a unit: a hole offered while a nearer solid is in the tree
// without its own holes would be rejected as hidden.
type Group struct {
	Solid *cull.Poly
	Holes []*cull.Poly
}

// Groups converts the occluders into cull polygons, one group per solid, in
// file order.
func (s *Scene) Groups() []Group {
	var groups []Group
	for _, o := range s.Occluders {
		if !o.Hole {
			groups = append(groups, Group{Solid: o.Poly()})
			continue
		}
		if len(groups) == 0 {
			continue
		}
		g := &groups[len(groups)-1]
		g.Holes = append(g.Holes, o.Poly())
	}
	return groups
}

// SortGroups orders groups front to back from eye by the nearest point of
// each solid's bounding sphere.
func SortGroups(groups []Group, eye mgl32.Vec3) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].depth(eye) < groups[j].depth(eye)
	})
}

func (g Group) depth(eye mgl32.Vec3) float32 {
	return g.Solid.Center.Sub(eye).Len() - g.Solid.Radius
}

// Frame rebuilds tr for one view of the scene. Groups are sorted in place,
// nearest first, and each solid is followed by its holes.
func Frame(tr *cull.Tree, cam Camera, groups []Group) {
	SortGroups(groups, cam.Eye)

	tr.Reset()
	tr.InitFrustum(cam.ViewProj())
	tr.SetViewPos(cam.Eye)
	for _, g := range groups {
		tr.AddPoly(g.Solid)
		for _, h := range g.Holes {
			tr.AddPoly(h)
		}
	}
}

func (c *Camera) setDefaults() {
	if c.Up == (mgl32.Vec3{}) {
		c.Up = mgl32.Vec3{0, 1, 0}
	}
	if c.FovY <= 0 {
		c.FovY = 60
	}
	if c.Aspect <= 0 {
		c.Aspect = 16.0 / 9.0
	}
	if c.Near == 0 && c.Far == 0 {
		c.Near, c.Far = 0.5, 500
	}
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

func (c Camera) Proj() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

func (c Camera) ViewProj() mgl32.Mat4 {
	return c.Proj().Mul4(c.View())
}

// At returns the camera for frame i of n.
func (c Camera) At(i, n int) Camera {
	if n <= 0 {
		return c
	}
	t := float32(i%n) / float32(n)
	if len(c.Path) > 1 {
		// Closed loop through the path points.
		pos := t * float32(len(c.Path))
		k := int(pos)
		a, b := c.Path[k], c.Path[(k+1)%len(c.Path)]
		c.Eye = a.Add(b.Sub(a).Mul(pos - float32(k)))
		return c
	}
	return c.Orbit(t * 2 * math.Pi)
}

// Orbit swings the eye around the target's vertical axis by angle radians,
// keeping its height and horizontal distance.
func (c Camera) Orbit(angle float32) Camera {
	off := c.Eye.Sub(c.Target)
	sin, cos := math.Sincos(float64(angle))
	x := off.X()*float32(cos) - off.Z()*float32(sin)
	z := off.X()*float32(sin) + off.Z()*float32(cos)
	c.Eye = c.Target.Add(mgl32.Vec3{x, off.Y(), z})
	return c
}
