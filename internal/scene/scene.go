// Package scene loads trail scene files.
//
// A scene describes a canvas, the anchors a trail passes through and the
// generation parameters, in YAML:
//
//	width: 1280
//	height: 1800
//	viewport: desktop
//	reveal: 3
//	trail:
//	  waviness: 0.9
//	  smoothness: 0.7
//	  sideOffset: 30
//	  seed: 42
//	anchors:
//	  - {x: 640, y: 200, label: "1948"}
//	  - {x: 420, y: 520, label: "1967"}
//
// Omitted fields take the library defaults. Viewport defaults to the class
// of the canvas width; reveal defaults to every anchor.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NehoraiHadad/trail"
)

// Default canvas size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 1800
)

// Errors returned by Parse and Load.
var (
	ErrInvalidSize     = errors.New("scene: width and height must be positive")
	ErrInvalidViewport = errors.New("scene: unknown viewport")
	ErrInvalidAnchor   = errors.New("scene: anchor coordinates must be finite")
)

// Anchor is a trail anchor with an optional label drawn beside it.
type Anchor struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Label string  `yaml:"label,omitempty"`
}

// Params are the generation parameters. Nil fields take defaults.
type Params struct {
	Waviness   *float64 `yaml:"waviness,omitempty"`
	Smoothness *float64 `yaml:"smoothness,omitempty"`
	SideOffset *float64 `yaml:"sideOffset,omitempty"`
	Seed       *int64   `yaml:"seed,omitempty"`
}

// Scene is a decoded scene file.
type Scene struct {
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Viewport string   `yaml:"viewport,omitempty"`
	Reveal   *int     `yaml:"reveal,omitempty"`
	Trail    Params   `yaml:"trail"`
	Anchors  []Anchor `yaml:"anchors"`
}

// Load reads and parses the scene file at path.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML bytes.
func Parse(data []byte) (*Scene, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a scene from r, applies defaults and validates it.
// Unknown fields are rejected so typos do not pass silently.
func Decode(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) applyDefaults() {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Viewport == "" {
		s.Viewport = trail.ViewportFor(s.Width).String()
	}
}

// Validate reports the first problem with the scene.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	if _, ok := trail.ParseViewport(s.Viewport); !ok {
		return fmt.Errorf("%w %q", ErrInvalidViewport, s.Viewport)
	}
	for i, a := range s.Anchors {
		if math.IsNaN(a.X) || math.IsInf(a.X, 0) || math.IsNaN(a.Y) || math.IsInf(a.Y, 0) {
			return fmt.Errorf("%w: anchor %d", ErrInvalidAnchor, i)
		}
	}
	return nil
}

// Points returns the anchor positions.
func (s *Scene) Points() []trail.Point {
	pts := make([]trail.Point, len(s.Anchors))
	for i, a := range s.Anchors {
		pts[i] = trail.Pt(a.X, a.Y)
	}
	return pts
}

// FootstepViewport returns the viewport class footsteps are sized for.
func (s *Scene) FootstepViewport() trail.Viewport {
	v, _ := trail.ParseViewport(s.Viewport)
	return v
}

// RevealIndex returns the anchor index revealed so far, defaulting to the
// last anchor.
func (s *Scene) RevealIndex() int {
	if s.Reveal != nil {
		return *s.Reveal
	}
	return len(s.Anchors) - 1
}

// GeneratorOptions returns the options for the scene's parameters,
// with the seed overridden when seed is non-nil.
func (s *Scene) GeneratorOptions(seed *int64) []trail.GeneratorOption {
	var opts []trail.GeneratorOption
	p := s.Trail
	if p.Waviness != nil {
		opts = append(opts, trail.WithWaviness(*p.Waviness))
	}
	if p.Smoothness != nil {
		opts = append(opts, trail.WithSmoothness(*p.Smoothness))
	}
	if p.SideOffset != nil {
		opts = append(opts, trail.WithSideOffset(*p.SideOffset))
	}
	switch {
	case seed != nil:
		opts = append(opts, trail.WithSeed(*seed))
	case p.Seed != nil:
		opts = append(opts, trail.WithSeed(*p.Seed))
	}
	return opts
}

// Demo returns a built-in scene: a vertical timeline with Hebrew and Latin
// labels, used when no scene file is given.
func Demo() *Scene {
	s := &Scene{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Anchors: []Anchor{
			{X: 640, Y: 180, Label: "1948 · קום המדינה"},
			{X: 430, Y: 460, Label: "1967"},
			{X: 820, Y: 760, Label: "1973 · יום כיפור"},
			{X: 500, Y: 1060, Label: "1994"},
			{X: 760, Y: 1360, Label: "2005 · ההתנתקות"},
			{X: 640, Y: 1640, Label: "2023"},
		},
	}
	s.applyDefaults()
	return s
}
