package trail

import (
	"math"
	"testing"
)

func TestVec2_Add(t *testing.T) {
	tests := []struct {
		name   string
		v, w   Vec2
		expect Vec2
	}{
		{"zero+zero", V2(0, 0), V2(0, 0), V2(0, 0)},
		{"positive", V2(1, 2), V2(3, 4), V2(4, 6)},
		{"negative", V2(-1, -2), V2(-3, -4), V2(-4, -6)},
		{"mixed", V2(1, -2), V2(-3, 4), V2(-2, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.v.Add(tt.w)
			if !result.Approx(tt.expect, 1e-10) {
				t.Errorf("%v.Add(%v) = %v, want %v", tt.v, tt.w, result, tt.expect)
			}
		})
	}
}

func TestVec2_Sub(t *testing.T) {
	if got := V2(5, 7).Sub(V2(2, 3)); !got.Approx(V2(3, 4), 1e-10) {
		t.Errorf("Sub = %v, want (3, 4)", got)
	}
}

func TestVec2_Length(t *testing.T) {
	tests := []struct {
		name   string
		v      Vec2
		expect float64
	}{
		{"zero", V2(0, 0), 0},
		{"3-4-5", V2(3, 4), 5},
		{"negative", V2(-3, -4), 5},
		{"unit x", V2(1, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Length(); math.Abs(got-tt.expect) > 1e-10 {
				t.Errorf("%v.Length() = %v, want %v", tt.v, got, tt.expect)
			}
			if got := tt.v.LengthSq(); math.Abs(got-tt.expect*tt.expect) > 1e-10 {
				t.Errorf("%v.LengthSq() = %v, want %v", tt.v, got, tt.expect*tt.expect)
			}
		})
	}
}

func TestVec2_Normalize(t *testing.T) {
	if got := V2(3, 4).Normalize(); !got.Approx(V2(0.6, 0.8), 1e-10) {
		t.Errorf("Normalize = %v, want (0.6, 0.8)", got)
	}
	if got := V2(0, 0).Normalize(); !got.IsZero() {
		t.Errorf("Normalize of zero = %v, want zero", got)
	}
}

func TestVec2_Perp(t *testing.T) {
	tests := []struct {
		v, expect Vec2
	}{
		{V2(1, 0), V2(0, 1)},
		{V2(0, 1), V2(-1, 0)},
		{V2(3, 4), V2(-4, 3)},
	}
	for _, tt := range tests {
		if got := tt.v.Perp(); !got.Approx(tt.expect, 1e-10) {
			t.Errorf("%v.Perp() = %v, want %v", tt.v, got, tt.expect)
		}
	}
}

func TestUnitAndAtan2(t *testing.T) {
	for _, angle := range []float64{0, math.Pi / 6, math.Pi / 2, 2, -1, -math.Pi / 2} {
		u := Unit(angle)
		if math.Abs(u.Length()-1) > 1e-12 {
			t.Errorf("Unit(%v) has length %v", angle, u.Length())
		}
		if got := u.Atan2(); math.Abs(got-angle) > 1e-12 {
			t.Errorf("Unit(%v).Atan2() = %v", angle, got)
		}
	}
}

func TestPointOps(t *testing.T) {
	p := Pt(1, 2)
	q := Pt(4, 6)

	if got := q.Sub(p); !got.Approx(V2(3, 4), 1e-12) {
		t.Errorf("Sub = %v, want (3, 4)", got)
	}
	if got := p.Add(V2(3, 4)); got != q {
		t.Errorf("Add = %v, want %v", got, q)
	}
	if got := p.Distance(q); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := p.DistanceSq(q); got != 25 {
		t.Errorf("DistanceSq = %v, want 25", got)
	}
	if got := p.Lerp(q, 0.5); !pointsEqual(got, Pt(2.5, 4), 1e-12) {
		t.Errorf("Lerp = %v, want (2.5, 4)", got)
	}
	if Pt(math.NaN(), 0).IsFinite() || Pt(0, math.Inf(1)).IsFinite() || !p.IsFinite() {
		t.Error("IsFinite misclassified a point")
	}
}
