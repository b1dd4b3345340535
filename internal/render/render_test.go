package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NehoraiHadad/trail"
)

func testFrame(t *testing.T) Frame {
	t.Helper()
	anchors := []trail.Point{trail.Pt(100, 60), trail.Pt(220, 200), trail.Pt(120, 340)}
	tr := trail.NewTrail(trail.WithGenerator(trail.WithSeed(42)))
	t.Cleanup(tr.Dispose)
	require.True(t, tr.SetAnchors(anchors))

	markers := []Marker{
		{X: 100, Y: 60, Label: "1948"},
		{X: 220, Y: 200, Label: "שלום"},
		{X: 120, Y: 340},
	}
	return Frame{Path: tr.Path(), Footsteps: tr.Snapshot(len(anchors) - 1), Markers: markers}
}

// near reports whether two colors match within the rounding of the
// downscale filter.
func near(a, b color.Color) bool {
	const tol = 3 << 8
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	d := func(x, y uint32) bool { return x+tol >= y && y+tol >= x }
	return d(ar, br) && d(ag, bg) && d(ab, bb)
}

func countNot(img *image.RGBA, bg color.Color) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !near(img.At(x, y), bg) {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	f := testFrame(t)
	require.NotEmpty(t, f.Footsteps)

	r, err := NewRenderer(DefaultOptions(320, 400))
	require.NoError(t, err)
	defer r.Close()

	img := r.Render(f)
	assert.Equal(t, image.Rect(0, 0, 320, 400), img.Bounds())
	assert.Greater(t, countNot(img, r.opts.Background), 500, "trail, feet and markers are drawn")

	// Far corner is untouched.
	assert.True(t, near(r.opts.Background, img.At(318, 2)))
}

func TestRenderEmptyFrame(t *testing.T) {
	opts := DefaultOptions(64, 48)
	opts.FontSize = 0
	r, err := NewRenderer(opts)
	require.NoError(t, err)
	defer r.Close()

	img := r.Render(Frame{})
	assert.Equal(t, 0, countNot(img, opts.Background))
}

func TestRenderMarkerColor(t *testing.T) {
	opts := DefaultOptions(60, 60)
	opts.FontSize = 0
	r, err := NewRenderer(opts)
	require.NoError(t, err)

	img := r.Render(Frame{Markers: []Marker{{X: 30, Y: 30}}})
	assert.True(t, near(opts.Marker, img.At(30, 30)))
}

func TestNewRendererErrors(t *testing.T) {
	_, err := NewRenderer(Options{Width: 0, Height: 10})
	assert.Error(t, err)

	opts := DefaultOptions(10, 10)
	opts.FontData = []byte("not a font")
	_, err = NewRenderer(opts)
	assert.Error(t, err)

	opts.Supersample = 0
	opts.FontSize = 0
	r, err := NewRenderer(opts)
	require.NoError(t, err)
	assert.Equal(t, 2.0, r.scale)
}

func TestEncodePNG(t *testing.T) {
	opts := DefaultOptions(40, 30)
	opts.FontSize = 0
	r, err := NewRenderer(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, r.Render(Frame{})))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestVisualOrder(t *testing.T) {
	assert.Equal(t, "1967", visualOrder("1967"))
	assert.Equal(t, "םולש", visualOrder("שלום"))
	assert.True(t, isRTL("יום כיפור"))
	assert.False(t, isRTL("Yom Kippur"))
}

func TestLabelAdvance(t *testing.T) {
	lb, err := newLabeler(nil, 20)
	require.NoError(t, err)
	defer lb.close()

	short, long := lb.advance("ab"), lb.advance("abcdef")
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.Equal(t, 0.0, lb.advance(""))
}
