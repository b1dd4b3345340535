package trail

import (
	"math"
	"sort"
	"sync/atomic"
)

// Geometry measures a curve by arc length.
type Geometry interface {
	// TotalLength returns the arc length of the whole curve.
	TotalLength() float64
	// PointAndTangentAt returns the position at arc length distance and the
	// tangent direction there in radians. Distances outside the curve are
	// clamped to its ends.
	PointAndTangentAt(distance float64) (Point, float64, error)
}

// flattenTolerance is the maximum deviation in pixels between a segment and
// the polyline used for arc-length lookup.
const flattenTolerance = 0.05

// arcVertex is one vertex of the arc-length table: the Bezier parameter of
// a flattened point and the distance travelled to reach it.
type arcVertex struct {
	cum float64
	seg int
	t   float64
}

// MeasuredPath is an analytic Geometry over a Path's cubic segments.
// Positions and tangents are evaluated on the Bezier itself; only the
// distance-to-parameter mapping goes through the flattened polyline.
//
// MeasuredPath is safe for concurrent reads. Release invalidates it.
type MeasuredPath struct {
	segs     []CubicBez
	verts    []arcVertex
	length   float64
	released atomic.Bool
}

// MeasurePath builds the arc-length table for p.
// A nil or empty path measures as zero length.
func MeasurePath(p *Path) *MeasuredPath {
	m := &MeasuredPath{segs: p.Segments()}
	if len(m.segs) == 0 {
		return m
	}

	m.verts = make([]arcVertex, 0, len(m.segs)*16)
	var cum float64
	var last Point
	for s, seg := range m.segs {
		first, base := len(m.verts), cum
		seg.FlattenParams(flattenTolerance, func(t float64, pt Point) {
			if len(m.verts) > 0 {
				cum += last.Distance(pt)
			}
			m.verts = append(m.verts, arcVertex{cum: cum, seg: s, t: t})
			last = pt
		})
		cum = stretchSegment(m.verts[first:], base, seg.Length(lengthAccuracy))
	}
	m.length = cum
	return m
}

// lengthAccuracy is the tolerance of the per-segment arc length that the
// flattened distances are stretched to.
const lengthAccuracy = 1e-3

// stretchSegment rescales the cumulative distances of one segment's
// vertices, which start at base, so the segment spans want. The chords of
// a flattened curve always fall a little short of its arc. It returns the
// cumulative distance at the segment's end.
func stretchSegment(verts []arcVertex, base, want float64) float64 {
	end := verts[len(verts)-1].cum
	poly := end - base
	if !(poly > 0) || math.Abs(want-poly) <= 1e-9*want {
		return end
	}
	k := want / poly
	for i := range verts {
		verts[i].cum = base + (verts[i].cum-base)*k
	}
	return base + want
}

// TotalLength implements Geometry.
func (m *MeasuredPath) TotalLength() float64 {
	return m.length
}

// SegmentCount returns the number of cubic segments measured.
func (m *MeasuredPath) SegmentCount() int {
	return len(m.segs)
}

// PointAndTangentAt implements Geometry.
func (m *MeasuredPath) PointAndTangentAt(distance float64) (Point, float64, error) {
	if m.released.Load() {
		return Point{}, 0, ErrReleased
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return Point{}, 0, ErrInvalidDistance
	}
	if len(m.verts) == 0 {
		return Point{}, 0, ErrEmptyPath
	}

	d := clamp(distance, 0, m.length)
	k := sort.Search(len(m.verts), func(i int) bool {
		return m.verts[i].cum >= d
	})
	if k == 0 {
		seg := m.segs[0]
		return seg.P0, seg.TangentAngle(0), nil
	}
	if k >= len(m.verts) {
		k = len(m.verts) - 1
	}

	a, b := m.verts[k-1], m.verts[k]
	seg := m.segs[b.seg]
	t := b.t
	if a.seg == b.seg {
		if span := b.cum - a.cum; span > 0 {
			t = a.t + (b.t-a.t)*(d-a.cum)/span
		}
	}
	return seg.Eval(t), seg.TangentAngle(t), nil
}

// Release invalidates the geometry. Later lookups fail with ErrReleased.
func (m *MeasuredPath) Release() {
	m.released.Store(true)
}

// Released reports whether Release has been called.
func (m *MeasuredPath) Released() bool {
	return m.released.Load()
}
