package render

import (
	"golang.org/x/image/vector"

	"github.com/NehoraiHadad/trail"
)

// strokeDashed adds a stroke of half-width hw along pts to z, cut into
// dashes of dash[0] on and dash[1] off. A zero on length strokes solid.
func strokeDashed(z *vector.Rasterizer, pts []trail.Point, hw float64, dash [2]float64) {
	if dash[0] <= 0 || dash[1] <= 0 {
		strokePolyline(z, pts, hw)
		return
	}

	on := true
	left := dash[0]
	prev := pts[0]
	run := []trail.Point{prev}
	for _, next := range pts[1:] {
		segLen := prev.Distance(next)
		for segLen > 0 {
			if segLen < left {
				left -= segLen
				if on {
					run = append(run, next)
				}
				break
			}
			cut := prev.Lerp(next, left/segLen)
			if on {
				run = append(run, cut)
				strokePolyline(z, run, hw)
				run = run[:0]
			} else {
				run = append(run[:0], cut)
			}
			segLen -= left
			prev = cut
			on = !on
			if on {
				left = dash[0]
			} else {
				left = dash[1]
			}
		}
		prev = next
	}
	if on && len(run) > 1 {
		strokePolyline(z, run, hw)
	}
}

// strokePolyline adds one quad per segment and a round cap at every
// vertex, wound like ellipse.
func strokePolyline(z *vector.Rasterizer, pts []trail.Point, hw float64) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		d := b.Sub(a)
		if d.IsZero() {
			continue
		}
		n := d.Normalize().Perp().Mul(hw)
		a0, a1 := a.Add(n.Mul(-1)), a.Add(n)
		b0, b1 := b.Add(n.Mul(-1)), b.Add(n)
		z.MoveTo(float32(a0.X), float32(a0.Y))
		z.LineTo(float32(b0.X), float32(b0.Y))
		z.LineTo(float32(b1.X), float32(b1.Y))
		z.LineTo(float32(a1.X), float32(a1.Y))
		z.ClosePath()
	}
	for _, p := range pts {
		ellipse(z, p.X, p.Y, hw, hw, 0)
	}
}
