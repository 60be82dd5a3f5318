package graphics

import (
	"cullbsp/internal/graphics/text"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	textVertShader = "shaders/text/text.vert"
	textFragShader = "shaders/text/text.frag"
)

// FontRenderer draws screen space text from a glyph atlas. Coordinates are
// pixels from the top-left corner of the viewport.
type FontRenderer struct {
	atlas      *text.Atlas
	shader     *Shader
	texture    uint32
	vao        uint32
	vbo        uint32
	projection mgl32.Mat4
	verts      []float32
}

// NewFontRenderer uploads atlas and compiles the text shader.
func NewFontRenderer(atlas *text.Atlas, width, height int) (*FontRenderer, error) {
	if atlas == nil || len(atlas.Glyphs) == 0 {
		return nil, errors.New("invalid font atlas")
	}
	shader, err := NewShader(textVertShader, textFragShader)
	if err != nil {
		return nil, err
	}
	fr := &FontRenderer{atlas: atlas, shader: shader}
	fr.SetViewport(width, height)
	fr.initGL()
	return fr, nil
}

func (fr *FontRenderer) initGL() {
	w, h := fr.atlas.Size()
	gl.GenTextures(1, &fr.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	// Rows of a single channel image are byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(fr.atlas.Image.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &fr.vao)
	gl.GenBuffers(1, &fr.vbo)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// SetViewport updates the pixel projection after a resize.
func (fr *FontRenderer) SetViewport(width, height int) {
	fr.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// LineHeight returns the distance between baselines at scale.
func (fr *FontRenderer) LineHeight(scale float32) float32 {
	return fr.atlas.LineHeight * scale
}

// RenderLines draws lines in one call, the first baseline at (x, y).
func (fr *FontRenderer) RenderLines(lines []string, x, y, scale float32, color mgl32.Vec3) {
	fr.verts = fr.atlas.Layout(fr.verts[:0], lines, x, y, scale)
	if len(fr.verts) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	fr.shader.Use()
	fr.shader.SetVector3("textColor", color.X(), color.Y(), color.Z())
	fr.shader.SetMatrix4("projection", &fr.projection[0])
	fr.shader.SetInt("glyphs", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)

	// Orphan the buffer before refilling it.
	size := len(fr.verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.STREAM_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(fr.verts))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(fr.verts)/4))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Delete releases the GL objects.
func (fr *FontRenderer) Delete() {
	gl.DeleteTextures(1, &fr.texture)
	gl.DeleteBuffers(1, &fr.vbo)
	gl.DeleteVertexArrays(1, &fr.vao)
	fr.shader.Delete()
}
