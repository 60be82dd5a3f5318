// Package text bakes a font into a glyph atlas and lays out strings as
// textured quads. It does not touch OpenGL.
package text

import (
	"image"
	"image/draw"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	firstRune = ' '
	lastRune  = '~'
	atlasW    = 512
	padding   = 1
)

// Glyph is one character's place in the atlas and its metrics, in pixels.
type Glyph struct {
	// Top-left corner in the atlas.
	X, Y float32
	W, H float32
	// Offset of the bitmap's top-left corner from the pen on the baseline.
	BearingX float32
	BearingY float32
	Advance  float32
}

// Atlas is a single channel image holding the printable ASCII glyphs of a face.
type Atlas struct {
	Image      *image.Alpha
	Glyphs     map[rune]Glyph
	LineHeight float32
}

// NewMonoAtlas bakes the Go Mono font at the given pixel size.
func NewMonoAtlas(pixels float64) (*Atlas, error) {
	return NewAtlas(gomono.TTF, pixels)
}

// NewAtlas bakes a TrueType or OpenType font at the given pixel size.
func NewAtlas(ttf []byte, pixels float64) (*Atlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, errors.New("parsing font failed").Wrap(err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pixels,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.New("creating font face failed").
			WithTag("pixels", pixels).
			Wrap(err)
	}
	defer func() { _ = face.Close() }()

	a := &Atlas{
		Glyphs:     make(map[rune]Glyph, lastRune-firstRune+1),
		LineHeight: float32(face.Metrics().Height.Ceil()),
	}

	// Pack rows left to right, then size the image to fit.
	type placed struct {
		dst   image.Rectangle
		mask  image.Image
		maskp image.Point
	}
	var glyphs []placed
	x, y, rowH := 0, 0, 0
	for r := rune(firstRune); r <= lastRune; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			BearingX: float32(dr.Min.X),
			BearingY: float32(-dr.Min.Y),
			Advance:  float32(math.Round(float64(advance) / 64)),
		}
		w, h := dr.Dx(), dr.Dy()
		if w > 0 && h > 0 && mask != nil {
			if x+w > atlasW {
				x, y, rowH = 0, y+rowH+padding, 0
			}
			g.X, g.Y = float32(x), float32(y)
			g.W, g.H = float32(w), float32(h)
			glyphs = append(glyphs, placed{image.Rect(x, y, x+w, y+h), mask, maskp})
			x += w + padding
			rowH = max(rowH, h)
		}
		a.Glyphs[r] = g
	}
	if len(a.Glyphs) == 0 {
		return nil, errors.New("font has no printable glyphs")
	}

	height := 1
	for height < y+rowH {
		height *= 2
	}
	a.Image = image.NewAlpha(image.Rect(0, 0, atlasW, height))
	for _, p := range glyphs {
		draw.Draw(a.Image, p.dst, p.mask, p.maskp, draw.Src)
	}
	return a, nil
}

// Size returns the atlas image size.
func (a *Atlas) Size() (int, int) {
	b := a.Image.Bounds()
	return b.Dx(), b.Dy()
}

// glyph returns the glyph for r, falling back to a space.
func (a *Atlas) glyph(r rune) Glyph {
	if g, ok := a.Glyphs[r]; ok {
		return g
	}
	return a.Glyphs[' ']
}

// Measure returns the width and tallest glyph height of s at scale.
func (a *Atlas) Measure(s string, scale float32) (float32, float32) {
	var w, h float32
	for _, r := range s {
		g := a.glyph(r)
		w += g.Advance * scale
		h = max(h, g.H*scale)
	}
	return w, h
}

// FloatsPerGlyph is the size of one glyph quad: two triangles of x, y, u, v.
const FloatsPerGlyph = 6 * 4

// AppendQuads appends the quads of s with its baseline starting at (x, y),
// y growing downwards. Glyphs without a bitmap only advance the pen.
func (a *Atlas) AppendQuads(dst []float32, s string, x, y, scale float32) []float32 {
	aw, ah := a.Size()
	iw, ih := 1/float32(aw), 1/float32(ah)
	for _, r := range s {
		g := a.glyph(r)
		if g.W > 0 && g.H > 0 {
			x0 := x + g.BearingX*scale
			y0 := y - g.BearingY*scale
			x1 := x0 + g.W*scale
			y1 := y0 + g.H*scale
			u0, v0 := g.X*iw, g.Y*ih
			u1, v1 := (g.X+g.W)*iw, (g.Y+g.H)*ih
			dst = append(dst,
				x0, y1, u0, v1,
				x0, y0, u0, v0,
				x1, y0, u1, v0,
				x0, y1, u0, v1,
				x1, y0, u1, v0,
				x1, y1, u1, v1,
			)
		}
		x += g.Advance * scale
	}
	return dst
}

// Layout appends the quads of lines, the first baseline at (x, y) and each
// following one LineHeight*scale lower.
func (a *Atlas) Layout(dst []float32, lines []string, x, y, scale float32) []float32 {
	for _, line := range lines {
		dst = a.AppendQuads(dst, line, x, y, scale)
		y += a.LineHeight * scale
	}
	return dst
}
