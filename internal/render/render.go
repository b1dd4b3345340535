// Package render rasterizes a trail, its footprints and its anchor markers
// into an RGBA image.
//
// Everything is drawn at a supersampled resolution with
// golang.org/x/image/vector and scaled down with a Catmull-Rom filter,
// which gives smooth edges without a full anti-aliasing stroker.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/NehoraiHadad/trail"
)

// Marker is an anchor drawn as a dot with an optional label.
type Marker struct {
	X, Y  float64
	Label string
}

// Frame is everything drawn in one image.
type Frame struct {
	Path      *trail.Path
	Footsteps []trail.Footstep
	Markers   []Marker
}

// Options control the look of a rendered frame.
type Options struct {
	Width, Height int
	// Supersample is the oversampling factor per axis. Values below 1
	// mean 2.
	Supersample int

	Background color.Color
	Trail      color.Color
	LeftFoot   color.Color
	RightFoot  color.Color
	Marker     color.Color
	Label      color.Color

	TrailWidth float64
	// Dash is the on and off length of the trail stroke. {0, 0} is solid.
	Dash         [2]float64
	FootSize     float64
	MarkerRadius float64
	FontSize     float64
	// FontData is a TrueType or OpenType font for labels. Nil selects Go
	// Regular, which has no Hebrew glyphs.
	FontData []byte
}

// DefaultOptions returns the standard palette for a canvas.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:        width,
		Height:       height,
		Supersample:  2,
		Background:   color.RGBA{0xf6, 0xf0, 0xe4, 0xff},
		Trail:        color.RGBA{0xb8, 0x9b, 0x72, 0xff},
		LeftFoot:     color.RGBA{0x5b, 0x43, 0x2c, 0xe0},
		RightFoot:    color.RGBA{0x7a, 0x5a, 0x3c, 0xe0},
		Marker:       color.RGBA{0x2f, 0x4f, 0x6f, 0xff},
		Label:        color.RGBA{0x22, 0x22, 0x22, 0xff},
		TrailWidth:   3,
		Dash:         [2]float64{10, 7},
		FootSize:     7,
		MarkerRadius: 9,
		FontSize:     18,
	}
}

// Renderer draws frames with fixed options. It holds parsed fonts, so reuse
// it across frames. A Renderer is not safe for concurrent use.
type Renderer struct {
	opts   Options
	scale  float64
	labels *labeler
}

// NewRenderer validates opts and loads the label font.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 2
	}
	r := &Renderer{opts: opts, scale: float64(opts.Supersample)}
	if opts.FontSize > 0 {
		lb, err := newLabeler(opts.FontData, opts.FontSize*r.scale)
		if err != nil {
			return nil, err
		}
		r.labels = lb
	}
	return r, nil
}

// Close releases the font faces.
func (r *Renderer) Close() error {
	if r.labels == nil {
		return nil
	}
	return r.labels.close()
}

// Render draws f and returns an image of the configured size.
func (r *Renderer) Render(f Frame) *image.RGBA {
	o := r.opts
	w, h := o.Width*o.Supersample, o.Height*o.Supersample
	big := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(big, big.Bounds(), image.NewUniform(o.Background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	fill := func(c color.Color) {
		z.Draw(big, big.Bounds(), image.NewUniform(c), image.Point{})
		z.Reset(w, h)
	}

	if pts := r.flatten(f.Path); len(pts) > 1 {
		strokeDashed(z, pts, o.TrailWidth*r.scale/2, scaleDash(o.Dash, r.scale))
		fill(o.Trail)
	}

	for _, side := range []trail.Side{trail.Left, trail.Right} {
		n := 0
		for _, s := range f.Footsteps {
			if s.Side != side {
				continue
			}
			footprint(z, s.X*r.scale, s.Y*r.scale, s.Angle, o.FootSize*r.scale)
			n++
		}
		if n == 0 {
			continue
		}
		if side == trail.Left {
			fill(o.LeftFoot)
		} else {
			fill(o.RightFoot)
		}
	}

	if len(f.Markers) > 0 && o.MarkerRadius > 0 {
		for _, m := range f.Markers {
			ellipse(z, m.X*r.scale, m.Y*r.scale, o.MarkerRadius*r.scale, o.MarkerRadius*r.scale, 0)
		}
		fill(o.Marker)
	}

	if r.labels != nil {
		for _, m := range f.Markers {
			if m.Label == "" {
				continue
			}
			r.labels.draw(big, m, r.scale, o)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return out
}

// flatten converts the path to a supersampled polyline.
func (r *Renderer) flatten(p *trail.Path) []trail.Point {
	segs := p.Segments()
	if len(segs) == 0 {
		return nil
	}
	pts := make([]trail.Point, 0, len(segs)*16)
	tol := 0.2 / r.scale
	for i, seg := range segs {
		seg.FlattenParams(tol, func(t float64, pt trail.Point) {
			if i > 0 && t == 0 {
				return
			}
			pts = append(pts, trail.Pt(pt.X*r.scale, pt.Y*r.scale))
		})
	}
	return pts
}

func scaleDash(d [2]float64, s float64) [2]float64 {
	return [2]float64{d[0] * s, d[1] * s}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

// footprint adds a shoe print: a sole and a smaller heel, pointing along
// angle (degrees, 0 = up, clockwise).
func footprint(z *vector.Rasterizer, x, y, angleDeg, size float64) {
	rad := angleDeg * math.Pi / 180
	fx, fy := math.Sin(rad), -math.Cos(rad)
	ellipse(z, x+fx*size*0.35, y+fy*size*0.35, size*0.42, size*0.75, rad)
	ellipse(z, x-fx*size*0.75, y-fy*size*0.75, size*0.32, size*0.38, rad)
}

const ellipseSteps = 24

// ellipse adds a closed ellipse with semi-axes rx (across) and ry (along),
// rotated by rot radians. All shapes wind the same way so overlaps do not
// cancel.
func ellipse(z *vector.Rasterizer, cx, cy, rx, ry, rot float64) {
	sin, cos := math.Sincos(rot)
	for k := 0; k <= ellipseSteps; k++ {
		a := 2 * math.Pi * float64(k) / ellipseSteps
		u, v := rx*math.Cos(a), ry*math.Sin(a)
		px := cx + u*cos - v*sin
		py := cy + u*sin + v*cos
		if k == 0 {
			z.MoveTo(float32(px), float32(py))
		} else {
			z.LineTo(float32(px), float32(py))
		}
	}
	z.ClosePath()
}
