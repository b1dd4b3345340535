package trail

import (
	"strconv"
	"strings"
)

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a straight line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// Path is a single open subpath: a move-to followed by drawing segments.
// It is the serializable description handed to the renderer and used as
// the sampler cache key.
type Path struct {
	elements []PathElement
	current  Point
	started  bool
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo starts the path at a point. A second MoveTo replaces the start of
// an otherwise empty path and is ignored afterwards, since a trail is a
// single continuous stroke.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	if p.started && len(p.elements) > 1 {
		return
	}
	p.elements = append(p.elements[:0], MoveTo{Point: pt})
	p.current = pt
	p.started = true
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	p.ensureStart()
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureStart()
	pt := Pt(x, y)
	p.elements = append(p.elements, CubicTo{
		Control1: Pt(c1x, c1y),
		Control2: Pt(c2x, c2y),
		Point:    pt,
	})
	p.current = pt
}

// ensureStart inserts an implicit MoveTo(0, 0), matching SVG behavior for
// drawing commands without a preceding move.
func (p *Path) ensureStart() {
	if !p.started {
		p.MoveTo(0, 0)
	}
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	if p == nil {
		return nil
	}
	return p.elements
}

// IsEmpty reports whether the path has no drawing segments.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.elements) < 2
}

// SegmentCount returns the number of drawing segments after the move-to.
func (p *Path) SegmentCount() int {
	if p == nil || len(p.elements) == 0 {
		return 0
	}
	return len(p.elements) - 1
}

// Start returns the move-to point.
func (p *Path) Start() Point {
	if p == nil || len(p.elements) == 0 {
		return Point{}
	}
	return p.elements[0].(MoveTo).Point
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Segments returns every drawing segment as a cubic, in order.
// Lines are raised to exact cubics.
func (p *Path) Segments() []CubicBez {
	if p.IsEmpty() {
		return nil
	}
	segs := make([]CubicBez, 0, len(p.elements)-1)
	var current Point
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			current = e.Point
		case LineTo:
			segs = append(segs, LineBez(current, e.Point))
			current = e.Point
		case CubicTo:
			segs = append(segs, NewCubicBez(current, e.Control1, e.Control2, e.Point))
			current = e.Point
		}
	}
	return segs
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	elems := make([]PathElement, len(p.elements))
	copy(elems, p.elements)
	return &Path{
		elements: elems,
		current:  p.current,
		started:  p.started,
	}
}

// String serializes the path as SVG path data:
// "M x y C c1x c1y, c2x c2y, x y ...". A nil or empty path yields "".
func (p *Path) String() string {
	if p == nil || len(p.elements) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(p.elements) * 48)
	for i, elem := range p.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch e := elem.(type) {
		case MoveTo:
			b.WriteString("M ")
			writePoint(&b, e.Point)
		case LineTo:
			b.WriteString("L ")
			writePoint(&b, e.Point)
		case CubicTo:
			b.WriteString("C ")
			writePoint(&b, e.Control1)
			b.WriteString(", ")
			writePoint(&b, e.Control2)
			b.WriteString(", ")
			writePoint(&b, e.Point)
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, pt Point) {
	b.WriteString(formatFloat(pt.X))
	b.WriteByte(' ')
	b.WriteString(formatFloat(pt.Y))
}

func formatFloat(v float64) string {
	if v == 0 {
		// Avoid "-0".
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
