package trail

import "math"

// Curve types for trail geometry.
// Based on kurbo patterns, adapted for Go idioms.

// CubicBez represents a cubic Bezier curve with control points P0, P1, P2, P3.
// P0 is the start point, P1 and P2 are control points, P3 is the end point.
type CubicBez struct {
	P0, P1, P2, P3 Point
}

// NewCubicBez creates a new cubic Bezier curve.
func NewCubicBez(p0, p1, p2, p3 Point) CubicBez {
	return CubicBez{P0: p0, P1: p1, P2: p2, P3: p3}
}

// LineBez returns the straight segment p0-p1 as an exact cubic.
func LineBez(p0, p1 Point) CubicBez {
	return CubicBez{
		P0: p0,
		P1: p0.Lerp(p1, 1.0/3.0),
		P2: p0.Lerp(p1, 2.0/3.0),
		P3: p1,
	}
}

// Eval evaluates the curve at parameter t (0 to 1).
func (c CubicBez) Eval(t float64) Point {
	mt := 1.0 - t
	mt2 := mt * mt
	mt3 := mt2 * mt
	t2 := t * t
	t3 := t2 * t

	// (1-t)^3 * P0 + 3(1-t)^2*t * P1 + 3(1-t)*t^2 * P2 + t^3 * P3
	return Point{
		X: mt3*c.P0.X + 3*mt2*t*c.P1.X + 3*mt*t2*c.P2.X + t3*c.P3.X,
		Y: mt3*c.P0.Y + 3*mt2*t*c.P1.Y + 3*mt*t2*c.P2.Y + t3*c.P3.Y,
	}
}

// Start returns the starting point of the curve.
func (c CubicBez) Start() Point {
	return c.P0
}

// End returns the ending point of the curve.
func (c CubicBez) End() Point {
	return c.P3
}

// Deriv returns the first derivative of the curve at parameter t.
func (c CubicBez) Deriv(t float64) Vec2 {
	d0 := c.P1.Sub(c.P0)
	d1 := c.P2.Sub(c.P1)
	d2 := c.P3.Sub(c.P2)
	mt := 1.0 - t
	// 3[(P1-P0)(1-t)^2 + 2(P2-P1)(1-t)t + (P3-P2)t^2]
	return Vec2{
		X: 3 * (d0.X*mt*mt + 2*d1.X*mt*t + d2.X*t*t),
		Y: 3 * (d0.Y*mt*mt + 2*d1.Y*mt*t + d2.Y*t*t),
	}
}

// TangentAngle returns the direction of travel at t in radians.
// Where the derivative vanishes (coincident control points) the chord
// direction is used instead, and 0 for a fully degenerate curve.
func (c CubicBez) TangentAngle(t float64) float64 {
	d := c.Deriv(t)
	if d.LengthSq() > 1e-18 {
		return d.Atan2()
	}
	chord := c.P3.Sub(c.P0)
	if chord.IsZero() {
		return 0
	}
	return chord.Atan2()
}

// Subdivide splits the curve at t=0.5 into two halves using de Casteljau.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, 0.5)
	p12 := c.P1.Lerp(c.P2, 0.5)
	p23 := c.P2.Lerp(c.P3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	mid := p012.Lerp(p123, 0.5)

	return CubicBez{P0: c.P0, P1: p01, P2: p012, P3: mid},
		CubicBez{P0: mid, P1: p123, P2: p23, P3: c.P3}
}

// maxSubdivideDepth bounds recursion on pathological input.
const maxSubdivideDepth = 16

// Length returns the arc length of the curve.
// accuracy controls the precision of the approximation (smaller = more accurate).
func (c CubicBez) Length(accuracy float64) float64 {
	if accuracy <= 0 {
		accuracy = 0.001
	}
	return cubicLengthRecursive(c, accuracy*accuracy, 0)
}

func cubicLengthRecursive(c CubicBez, accuracySq float64, depth int) float64 {
	chord := c.P0.Distance(c.P3)
	polygon := c.P0.Distance(c.P1) + c.P1.Distance(c.P2) + c.P2.Distance(c.P3)

	// If they're close enough, use the average
	diff := polygon - chord
	if diff*diff <= accuracySq || depth >= maxSubdivideDepth {
		return (chord + polygon) / 2
	}

	c1, c2 := c.Subdivide()
	return cubicLengthRecursive(c1, accuracySq, depth+1) + cubicLengthRecursive(c2, accuracySq, depth+1)
}

// flatness returns the squared maximum deviation metric of the control
// points from the chord, scaled by 16.
func (c CubicBez) flatness() float64 {
	ux := 3.0*c.P1.X - 2.0*c.P0.X - c.P3.X
	uy := 3.0*c.P1.Y - 2.0*c.P0.Y - c.P3.Y
	vx := 3.0*c.P2.X - c.P0.X - 2.0*c.P3.X
	vy := 3.0*c.P2.Y - c.P0.Y - 2.0*c.P3.Y

	return math.Max(ux*ux+uy*uy, vx*vx+vy*vy)
}

// FlattenParams calls fn with increasing parameter values at which the
// curve may be approximated by straight lines within tolerance. The first
// call is always t=0 and the last t=1.
func (c CubicBez) FlattenParams(tolerance float64, fn func(t float64, pt Point)) {
	if tolerance <= 0 {
		tolerance = 0.1
	}
	fn(0, c.P0)
	flattenParamsRecursive(c, 0, 1, tolerance*tolerance, 0, fn)
}

func flattenParamsRecursive(c CubicBez, t0, t1, toleranceSq float64, depth int, fn func(t float64, pt Point)) {
	if c.flatness() <= toleranceSq*16 || depth >= maxSubdivideDepth {
		fn(t1, c.P3)
		return
	}

	mid := (t0 + t1) / 2
	c1, c2 := c.Subdivide()
	flattenParamsRecursive(c1, t0, mid, toleranceSq, depth+1, fn)
	flattenParamsRecursive(c2, mid, t1, toleranceSq, depth+1, fn)
}
