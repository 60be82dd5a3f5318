package occluders

import (
	"path"

	"cullbsp/internal/graphics"
	renderer "cullbsp/internal/graphics/renderer"
	"cullbsp/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	ShadersDir = "shaders/occluders"
)

var (
	OccluderVertShader = path.Join(ShadersDir, "occluders.vert")
	OccluderFragShader = path.Join(ShadersDir, "occluders.frag")
)

// stride is position, normal and color, in floats.
const stride = 3 + 3 + 4

// Occluders draws the polygon fragments the cull tree captured while it was
// built: solids in blue, holes in red.
type Occluders struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
	ebo    uint32

	vertices []float32
	count    int32
}

func NewOccluders() *Occluders {
	return &Occluders{}
}

func (o *Occluders) Init() error {
	var err error
	o.shader, err = graphics.NewShader(OccluderVertShader, OccluderFragShader)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.GenBuffers(1, &o.ebo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.ebo)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride*4, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride*4, 6*4)
	gl.BindVertexArray(0)
	return nil
}

// Render uploads the tree's captured geometry and draws it.
func (o *Occluders) Render(ctx renderer.RenderContext) {
	if ctx.Tree == nil {
		return
	}
	defer profiling.Track("renderer.renderOccluders")()

	verts := ctx.Tree.CaptureVerts()
	norms := ctx.Tree.CaptureNorms()
	colors := ctx.Tree.CaptureColors()
	tris := ctx.Tree.CaptureTris()
	if len(tris) == 0 {
		return
	}

	o.vertices = o.vertices[:0]
	for i, v := range verts {
		n, c := norms[i], colors[i]
		o.vertices = append(o.vertices, v[0], v[1], v[2], n[0], n[1], n[2], c[0], c[1], c[2], c[3])
	}

	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(o.vertices)*4, gl.Ptr(o.vertices), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(tris)*4, gl.Ptr(tris), gl.STREAM_DRAW)
	o.count = int32(len(tris))

	o.shader.Use()
	o.shader.SetMatrix4("proj", &ctx.Proj[0])
	o.shader.SetMatrix4("view", &ctx.View[0])
	o.shader.SetVector3("lightDir", 0.3, 1.0, 0.5)

	// Both faces, without writing depth so boxes behind stay visible.
	gl.Disable(gl.CULL_FACE)
	gl.DepthMask(false)
	gl.DrawElements(gl.TRIANGLES, o.count, gl.UNSIGNED_INT, nil)
	gl.DepthMask(true)
	gl.BindVertexArray(0)
}

func (o *Occluders) Dispose() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.ebo != 0 {
		gl.DeleteBuffers(1, &o.ebo)
	}
	if o.shader != nil {
		o.shader.Delete()
	}
}
