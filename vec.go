package trail

import "math"

// Vec2 is a displacement in pixel space: the difference of two Points, a
// tangent, or a sideways offset.
type Vec2 struct {
	X, Y float64
}

// V2 builds a Vec2.
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Unit returns the unit vector at angle radians from the +X axis.
func Unit(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: cos, Y: sin}
}

func (v Vec2) Add(w Vec2) Vec2    { return Vec2{X: v.X + w.X, Y: v.Y + w.Y} }
func (v Vec2) Sub(w Vec2) Vec2    { return Vec2{X: v.X - w.X, Y: v.Y - w.Y} }
func (v Vec2) Mul(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }
func (v Vec2) LengthSq() float64  { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float64    { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsZero() bool       { return v == Vec2{} }

// Normalize scales v to unit length. The zero vector stays zero, so
// degenerate segments yield no offset instead of NaN.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

// Perp is v rotated a quarter turn: counter-clockwise in y-up axes,
// clockwise on screen.
func (v Vec2) Perp() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Atan2 is the direction of v in radians, in (-π, π].
func (v Vec2) Atan2() float64 { return math.Atan2(v.Y, v.X) }

// Approx reports whether each component of v is within eps of w's.
func (v Vec2) Approx(w Vec2, eps float64) bool {
	d := v.Sub(w)
	return math.Abs(d.X) < eps && math.Abs(d.Y) < eps
}
