package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NehoraiHadad/trail"
)

const sample = `
width: 900
height: 1400
reveal: 1
trail:
  waviness: 0.5
  seed: 42
anchors:
  - {x: 100, y: 100, label: "1948"}
  - {x: 300, y: 400}
  - x: 500
    y: 700
    label: "שלום"
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 900, s.Width)
	assert.Equal(t, 1400, s.Height)
	assert.Equal(t, "tablet", s.Viewport, "viewport follows the width")
	assert.Equal(t, trail.Tablet, s.FootstepViewport())
	assert.Equal(t, 1, s.RevealIndex())

	require.Len(t, s.Anchors, 3)
	assert.Equal(t, "1948", s.Anchors[0].Label)
	assert.Equal(t, "שלום", s.Anchors[2].Label)
	assert.Equal(t, []trail.Point{{X: 100, Y: 100}, {X: 300, Y: 400}, {X: 500, Y: 700}}, s.Points())
}

func TestGeneratorOptions(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	p := trail.NewGenerator(s.GeneratorOptions(nil)...).Params()
	assert.Equal(t, 0.5, p.Waviness)
	assert.Equal(t, trail.DefaultSmoothness, p.Smoothness)
	assert.Equal(t, trail.DefaultSideOffset, p.SideOffset)
	assert.Equal(t, int64(42), p.Seed)

	seed := int64(7)
	p = trail.NewGenerator(s.GeneratorOptions(&seed)...).Params()
	assert.Equal(t, int64(7), p.Seed, "an explicit seed wins over the file")
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, s.Width)
	assert.Equal(t, DefaultHeight, s.Height)
	assert.Equal(t, "desktop", s.Viewport)
	assert.Equal(t, -1, s.RevealIndex())
	assert.Empty(t, s.GeneratorOptions(nil))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"negative size", "width: -5", ErrInvalidSize},
		{"bad viewport", "viewport: watch", ErrInvalidViewport},
		{"nan anchor", "anchors: [{x: .nan, y: 1}]", ErrInvalidAnchor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("widht: 10"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Parse([]byte("anchors: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Anchors, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDemo(t *testing.T) {
	s := Demo()
	require.NoError(t, s.Validate())
	assert.GreaterOrEqual(t, len(s.Anchors), 2)
	assert.Equal(t, trail.Desktop, s.FootstepViewport())

	tr := trail.NewTrail(trail.WithGenerator(s.GeneratorOptions(nil)...), trail.WithViewport(s.FootstepViewport()))
	tr.SetAnchors(s.Points())
	assert.NotEmpty(t, tr.PathData())
	assert.NotEmpty(t, tr.Snapshot(s.RevealIndex()))
}
