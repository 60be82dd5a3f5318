package wireframe

import (
	"path"

	"cullbsp/internal/graphics"
	renderer "cullbsp/internal/graphics/renderer"
	"cullbsp/internal/profiling"

	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ShadersDir = "shaders/wireframe"
)

var (
	WireframeVertShader = path.Join(ShadersDir, "wireframe.vert")
	WireframeFragShader = path.Join(ShadersDir, "wireframe.frag")
)

var (
	visibleColor = mgl32.Vec4{0.3, 0.9, 0.4, 1}
	culledColor  = mgl32.Vec4{0.9, 0.3, 0.3, 0.35}
)

// Wireframe draws scene object boxes, colored by whether the cull tree
// harvested them.
type Wireframe struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32

	// ShowCulled also draws the boxes that were culled.
	ShowCulled bool

	visible bitset.BitSet
}

// NewWireframe creates a new wireframe renderable
func NewWireframe() *Wireframe {
	return &Wireframe{ShowCulled: true}
}

// Init initializes the wireframe rendering system
func (w *Wireframe) Init() error {
	var err error
	w.shader, err = graphics.NewShader(WireframeVertShader, WireframeFragShader)
	if err != nil {
		return err
	}
	w.setupWireframeVAO()
	return nil
}

// Render draws every object box
func (w *Wireframe) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderObjectBoxes")()

	w.visible.ClearAll()
	for _, id := range ctx.Visible {
		w.visible.Set(uint(id))
	}

	w.shader.Use()
	w.shader.SetMatrix4("proj", &ctx.Proj[0])
	w.shader.SetMatrix4("view", &ctx.View[0])
	gl.BindVertexArray(w.vao)
	gl.LineWidth(1.0)

	for id, b := range ctx.Objects {
		if !b.IsNormal() {
			continue
		}
		col := visibleColor
		if !w.visible.Test(uint(id)) {
			if !w.ShowCulled {
				continue
			}
			col = culledColor
		}
		// Unit cube scaled and moved onto the box.
		c, size := b.Center(), b.Max.Sub(b.Min)
		model := mgl32.Translate3D(c.X(), c.Y(), c.Z()).
			Mul4(mgl32.Scale3D(size.X(), size.Y(), size.Z()))
		w.shader.SetMatrix4("model", &model[0])
		w.shader.SetVector4("color", col[0], col[1], col[2], col[3])
		gl.DrawArrays(gl.LINES, 0, 24)
	}
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (w *Wireframe) Dispose() {
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.shader != nil {
		w.shader.Delete()
	}
}

func (w *Wireframe) setupWireframeVAO() {
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)

	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)

	vertices := []float32{
		// Front face
		-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
		0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
		0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
		-0.5, 0.5, 0.5, -0.5, -0.5, 0.5,

		// Back face
		-0.5, -0.5, -0.5, 0.5, -0.5, -0.5,
		0.5, -0.5, -0.5, 0.5, 0.5, -0.5,
		0.5, 0.5, -0.5, -0.5, 0.5, -0.5,
		-0.5, 0.5, -0.5, -0.5, -0.5, -0.5,

		// Connecting edges
		-0.5, -0.5, 0.5, -0.5, -0.5, -0.5,
		0.5, -0.5, 0.5, 0.5, -0.5, -0.5,
		0.5, 0.5, 0.5, 0.5, 0.5, -0.5,
		-0.5, 0.5, 0.5, -0.5, 0.5, -0.5,
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}
