package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// GenOptions shape a generated scene.
type GenOptions struct {
	Objects int
	Walls   int
	// Extent is the half size of the square ground area.
	Extent float32
	// WindowChance is the probability that a wall gets a hole.
	WindowChance float64
}

func DefaultGenOptions() GenOptions {
	return GenOptions{
		Objects:      2000,
		Walls:        40,
		Extent:       100,
		WindowChance: 0.3,
	}
}

// Generate builds a reproducible town-like scene: boxes scattered over the
// ground and upright two-sided walls, some with a window.
func Generate(seed int64, opts GenOptions) *Scene {
	rnd := rand.New(rand.NewSource(seed))
	ext := opts.Extent
	uniform := func(lo, hi float32) float32 {
		return lo + rnd.Float32()*(hi-lo)
	}

	s := &Scene{
		Camera: Camera{
			Eye:    mgl32.Vec3{0, 8, ext * 1.2},
			Target: mgl32.Vec3{0, 2, 0},
		},
	}
	s.Camera.setDefaults()
	s.Camera.Far = ext * 4

	s.Objects = make([]Object, 0, opts.Objects)
	for i := 0; i < opts.Objects; i++ {
		c := mgl32.Vec3{uniform(-ext, ext), 0, uniform(-ext, ext)}
		half := mgl32.Vec3{uniform(0.3, 1.5), uniform(0.3, 2), uniform(0.3, 1.5)}
		c[1] = half.Y()
		s.Objects = append(s.Objects, Object{
			Name: fmt.Sprintf("box%d", i),
			Min:  c.Sub(half),
			Max:  c.Add(half),
		})
	}

	for i := 0; i < opts.Walls; i++ {
		base := mgl32.Vec3{uniform(-ext, ext), 0, uniform(-ext, ext)}
		width := uniform(8, 30)
		height := uniform(4, 12)
		angle := rnd.Float64() * math.Pi
		right := mgl32.Vec3{float32(math.Cos(angle)), 0, float32(math.Sin(angle))}

		s.Occluders = append(s.Occluders, Occluder{
			Verts:    rect(base, right, width, 0, height),
			TwoSided: true,
		})
		if rnd.Float64() < opts.WindowChance {
			s.Occluders = append(s.Occluders, Occluder{
				Verts:    rect(base, right, width*0.3, height*0.3, height*0.7),
				Hole:     true,
				TwoSided: true,
			})
		}
	}
	return s
}

// rect is an upright rectangle centred on base along right, spanning
// heights y0 to y1.
func rect(base, right mgl32.Vec3, width, y0, y1 float32) []mgl32.Vec3 {
	h := right.Mul(width / 2)
	lo := base.Add(mgl32.Vec3{0, y0, 0})
	hi := base.Add(mgl32.Vec3{0, y1, 0})
	return []mgl32.Vec3{lo.Sub(h), lo.Add(h), hi.Add(h), hi.Sub(h)}
}
