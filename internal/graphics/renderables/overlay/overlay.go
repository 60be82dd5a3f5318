package overlay

import (
	"cullbsp/internal/graphics"
	renderer "cullbsp/internal/graphics/renderer"
	"cullbsp/internal/graphics/text"
	"cullbsp/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	fontPixels = 16
	margin     = 10
)

var textColor = mgl32.Vec3{0.95, 0.95, 0.9}

// Overlay draws the frame report in the top-left corner of the window.
type Overlay struct {
	font *graphics.FontRenderer

	// Hidden turns the overlay off.
	Hidden bool
}

// NewOverlay creates a new overlay renderable
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Init bakes the font atlas and uploads it
func (o *Overlay) Init() error {
	atlas, err := text.NewMonoAtlas(fontPixels)
	if err != nil {
		return err
	}
	// The viewport is set on every Render.
	o.font, err = graphics.NewFontRenderer(atlas, 1, 1)
	return err
}

// Render draws ctx.Overlay, one entry per line
func (o *Overlay) Render(ctx renderer.RenderContext) {
	if o.Hidden || len(ctx.Overlay) == 0 || ctx.Width <= 0 || ctx.Height <= 0 {
		return
	}
	defer profiling.Track("renderer.renderOverlay")()

	o.font.SetViewport(ctx.Width, ctx.Height)
	o.font.RenderLines(ctx.Overlay, margin, margin+o.font.LineHeight(1), 1, textColor)
}

// Dispose releases the font texture and buffers
func (o *Overlay) Dispose() {
	if o.font != nil {
		o.font.Delete()
		o.font = nil
	}
}
