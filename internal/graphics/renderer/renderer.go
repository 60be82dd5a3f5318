package renderer

import (
	"cullbsp/internal/cull"
	"cullbsp/internal/geom"
	"cullbsp/internal/graphics"
	"cullbsp/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
	width       int
	height      int
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(camera *graphics.Camera, rs ...Renderable) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		renderables: rs,
		camera:      camera,
	}
	for i, rb := range rs {
		if err := rb.Init(); err != nil {
			// Dispose what was already set up.
			r.renderables = rs[:i]
			r.Dispose()
			return nil, err
		}
	}
	return r, nil
}

// Render draws one frame of the cull tree and the scene's objects, with the
// overlay lines on top.
func (r *Renderer) Render(tree *cull.Tree, objects []geom.Bounds, visible []int32, overlay []string) {
	defer profiling.Track("renderer.Render")()

	gl.ClearColor(0.12, 0.12, 0.14, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Camera:  r.camera,
		Tree:    tree,
		Objects: objects,
		Visible: visible,
		View:    r.camera.GetViewMatrix(),
		Proj:    r.camera.GetProjectionMatrix(),
		Width:   r.width,
		Height:  r.height,
		Overlay: overlay,
	}
	for _, rb := range r.renderables {
		rb.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.width, r.height = width, height
	r.camera.SetViewport(width, height)
}
