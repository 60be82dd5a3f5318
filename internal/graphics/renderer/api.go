package renderer

import (
	"cullbsp/internal/cull"
	"cullbsp/internal/geom"
	"cullbsp/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Camera *graphics.Camera
	Tree   *cull.Tree
	// Objects are the scene's boxes; Visible holds the harvested ids.
	Objects []geom.Bounds
	Visible []int32
	View    mgl32.Mat4
	Proj    mgl32.Mat4
	// Width and Height are the framebuffer size in pixels.
	Width  int
	Height int
	// Overlay holds the text lines drawn over the scene.
	Overlay []string
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
}
