package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func monoAtlas(t *testing.T) *Atlas {
	t.Helper()
	a, err := NewMonoAtlas(16)
	require.NoError(t, err)
	return a
}

func TestNewMonoAtlas(t *testing.T) {
	a := monoAtlas(t)
	require.Len(t, a.Glyphs, lastRune-firstRune+1)
	require.Greater(t, a.LineHeight, float32(0))

	w, h := a.Size()
	require.Equal(t, atlasW, w)
	require.Zero(t, h&(h-1), "height %d is a power of two", h)

	space := a.Glyphs[' ']
	require.Zero(t, space.W)
	require.Greater(t, space.Advance, float32(0))

	g := a.Glyphs['A']
	require.Greater(t, g.W, float32(0))
	require.Greater(t, g.H, float32(0))
	require.LessOrEqual(t, int(g.X+g.W), w)
	require.LessOrEqual(t, int(g.Y+g.H), h)

	// The bitmap was copied into its slot.
	var ink int
	for y := int(g.Y); y < int(g.Y+g.H); y++ {
		for x := int(g.X); x < int(g.X+g.W); x++ {
			ink += int(a.Image.AlphaAt(x, y).A)
		}
	}
	require.Greater(t, ink, 0)
}

func TestNewAtlasInvalidFont(t *testing.T) {
	_, err := NewAtlas([]byte("not a font"), 16)
	require.Error(t, err)
}

func TestMeasure(t *testing.T) {
	a := monoAtlas(t)
	adv := a.Glyphs['a'].Advance

	w, h := a.Measure("abc", 1)
	require.Equal(t, 3*adv, w)
	require.Greater(t, h, float32(0))

	w, _ = a.Measure("abc", 0.5)
	require.Equal(t, 1.5*adv, w)

	w, h = a.Measure("", 1)
	require.Zero(t, w)
	require.Zero(t, h)
}

func TestAppendQuads(t *testing.T) {
	a := monoAtlas(t)
	adv := a.Glyphs['a'].Advance

	quads := a.AppendQuads(nil, "a b", 10, 20, 1)
	require.Len(t, quads, 2*FloatsPerGlyph)

	for i := 0; i < len(quads); i += 4 {
		u, v := quads[i+2], quads[i+3]
		require.True(t, u >= 0 && u <= 1, "u %v", u)
		require.True(t, v >= 0 && v <= 1, "v %v", v)
	}

	// The second vertex of each quad is its top-left corner.
	b := a.Glyphs['b']
	second := quads[FloatsPerGlyph:]
	require.Equal(t, 10+2*adv+b.BearingX, second[4])
	require.Equal(t, 20-b.BearingY, second[5])

	// Characters outside the atlas advance like a space.
	require.Empty(t, a.AppendQuads(nil, "éé", 0, 0, 1))
	quads = a.AppendQuads(nil, "éa", 0, 0, 1)
	require.Equal(t, a.Glyphs[' '].Advance+a.Glyphs['a'].BearingX, quads[4])
}

func TestLayout(t *testing.T) {
	a := monoAtlas(t)
	quads := a.Layout(nil, []string{"x", "", "x"}, 0, 0, 2)
	require.Len(t, quads, 2*FloatsPerGlyph)

	top := quads[5]
	require.Equal(t, top+2*2*a.LineHeight, quads[FloatsPerGlyph+5])
}
