package trail

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NehoraiHadad/trail/internal/cache"
	"github.com/NehoraiHadad/trail/internal/clock"
)

func TestGenerateSamplesCoverage(t *testing.T) {
	m := MeasurePath(linePath(Pt(0, 0), Pt(103, 0)))
	samples := GenerateSamples(m, m.TotalLength(), 5)

	// 0, 5, ..., 100 and the end point.
	require.Len(t, samples, 22)
	assert.Equal(t, Pt(0, 0), samples[0].Point())
	assert.InDelta(t, 103, samples[len(samples)-1].X, 1e-9)
	assert.InDelta(t, 103, samples[len(samples)-1].Distance, 1e-9)
	for i, s := range samples[:len(samples)-1] {
		assert.InDelta(t, float64(i)*5, s.X, 1e-9)
		assert.InDelta(t, 0, s.Angle, 1e-9)
	}
}

func TestGenerateSamplesExactMultiple(t *testing.T) {
	m := MeasurePath(linePath(Pt(0, 0), Pt(0, 20)))
	samples := GenerateSamples(m, m.TotalLength(), 5)

	// 0, 5, 10, 15 and the end point at 20.
	require.Len(t, samples, 5)
	assert.InDelta(t, 20, samples[4].Y, 1e-9)
	assert.InDelta(t, math.Pi/2, samples[4].Angle, 1e-9, "end angle uses a backward difference")
}

func TestGenerateSamplesDefaultDistance(t *testing.T) {
	m := MeasurePath(linePath(Pt(0, 0), Pt(50, 0)))
	assert.Len(t, GenerateSamples(m, m.TotalLength(), 0), 11)
	assert.Len(t, GenerateSamples(m, m.TotalLength(), -3), 11)
	assert.Nil(t, GenerateSamples(nil, 10, 5))
}

type failingGeometry struct {
	Geometry
	failAfter float64
}

func (g failingGeometry) PointAndTangentAt(d float64) (Point, float64, error) {
	if d > g.failAfter {
		return Point{}, 0, ErrReleased
	}
	return g.Geometry.PointAndTangentAt(d)
}

func TestGenerateSamplesStopsOnError(t *testing.T) {
	m := MeasurePath(linePath(Pt(0, 0), Pt(100, 0)))
	g := failingGeometry{Geometry: m, failAfter: 30}

	samples := GenerateSamples(g, m.TotalLength(), 5)
	// 25 is the last distance whose look-ahead stays within 30.
	require.Len(t, samples, 6)
	assert.InDelta(t, 25, samples[5].X, 1e-9)
}

func TestInterpolate(t *testing.T) {
	m := MeasurePath(linePath(Pt(0, 0), Pt(103, 0)))
	samples := GenerateSamples(m, m.TotalLength(), 5)

	tests := []struct {
		name string
		d    float64
		x    float64
	}{
		{"start", 0, 0},
		{"before start", -20, 0},
		{"on grid", 35, 35},
		{"between", 12.5, 12.5},
		{"final interval", 101.5, 101.5},
		{"end", 103, 103},
		{"past end", 500, 103},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, ok := Interpolate(samples, tt.d, 5)
			require.True(t, ok)
			assert.InDelta(t, tt.x, sp.X, 1e-9)
			assert.InDelta(t, 0, sp.Y, 1e-9)
		})
	}

	_, ok := Interpolate(nil, 10, 5)
	assert.False(t, ok)
}

func TestInterpolateStaysWithinBracket(t *testing.T) {
	p := NewGenerator(WithSeed(5)).Generate(zigzagAnchors(4))
	m := MeasurePath(p)
	samples := GenerateSamples(m, m.TotalLength(), 5)

	for d := 0.0; d < m.TotalLength(); d += 0.7 {
		sp, ok := Interpolate(samples, d, 5)
		require.True(t, ok)
		lo := samples[int(d/5)]
		hi := samples[min(int(d/5)+1, len(samples)-1)]
		assert.True(t, between(sp.X, lo.X, hi.X) && between(sp.Y, lo.Y, hi.Y), "d=%v: %v outside [%v, %v]", d, sp, lo, hi)
		assert.True(t, between(sp.Angle, lo.Angle, hi.Angle), "d=%v: angle %v outside [%v, %v]", d, sp.Angle, lo.Angle, hi.Angle)
	}
}

func between(v, a, b float64) bool {
	const eps = 1e-9
	return v >= math.Min(a, b)-eps && v <= math.Max(a, b)+eps
}

func TestSampleTableLocate(t *testing.T) {
	_, err := SampleTable{}.Locate(5)
	assert.ErrorIs(t, err, ErrEmptyTable)

	s := NewSampler()
	table := s.Sample(linePath(Pt(0, 0), Pt(0, 40)))
	require.Equal(t, 9, table.Len())

	sp, err := table.Locate(22)
	require.NoError(t, err)
	assert.InDelta(t, 22, sp.Y, 1e-9)
}

func distinctPath(i int) *Path {
	return linePath(Pt(0, 0), Pt(float64(10+i), 0))
}

func TestSamplerHitReturnsSameHandle(t *testing.T) {
	s := NewSampler()
	p := distinctPath(1)

	h1, l1 := s.GetOrCreate(p)
	h2, l2 := s.GetOrCreate(p.Clone())
	require.NotNil(t, h1)
	assert.Same(t, h1, h2)
	assert.Equal(t, l1, l2)
	assert.InDelta(t, 11, l1, 1e-9)

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, 1, st.Len)
}

func TestSamplerNilPath(t *testing.T) {
	s := NewSampler()
	h, l := s.GetOrCreate(nil)
	assert.Nil(t, h)
	assert.Zero(t, l)
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Sample(nil).Len())
}

func TestSamplerCapacityKeepsMostRecent(t *testing.T) {
	s := NewSampler()
	var handles []*Handle
	for i := 0; i < 15; i++ {
		h, _ := s.GetOrCreate(distinctPath(i))
		handles = append(handles, h)
	}

	require.Equal(t, 10, s.Len())
	descs := s.Descriptions()
	for i, d := range descs {
		assert.Equal(t, distinctPath(14-i).String(), d)
	}
	for i, h := range handles {
		assert.Equal(t, i < 5, h.Released(), "handle %d", i)
	}

	_, err := handles[0].Locate(1)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestSamplerStaleEntriesReplaced(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s := NewSampler(WithClock(clk.Now))
	p := distinctPath(3)

	h1, _ := s.GetOrCreate(p)
	clk.Advance(DefaultCacheTTL - time.Second)
	h2, _ := s.GetOrCreate(p)
	assert.Same(t, h1, h2, "entry used within the TTL is live")

	clk.Advance(DefaultCacheTTL + time.Second)
	h3, _ := s.GetOrCreate(p)
	assert.NotSame(t, h1, h3)
	assert.True(t, h1.Released())
	assert.False(t, h3.Released())
	assert.Equal(t, 1, s.Len())
}

func TestSamplerPurge(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s := NewSampler(WithClock(clk.Now))

	old, _ := s.GetOrCreate(distinctPath(1))
	clk.Advance(20 * time.Second)
	fresh, _ := s.GetOrCreate(distinctPath(2))
	clk.Advance(15 * time.Second)

	assert.Equal(t, 1, s.Purge())
	assert.True(t, old.Released())
	assert.False(t, fresh.Released())
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.Purge(), "nothing else is stale")
}

func TestSamplerCollisionReplacesEntry(t *testing.T) {
	s := NewSampler()
	p := distinctPath(7)
	key := cache.StringHasher(p.String())

	impostor := &Handle{key: key, desc: "M 0 0 L 1 1", geom: MeasurePath(linePath(Pt(0, 0), Pt(1, 1)))}
	s.cache.Set(key, impostor)

	h, l := s.GetOrCreate(p)
	require.NotSame(t, impostor, h)
	assert.Equal(t, p.String(), h.Description())
	assert.InDelta(t, 17, l, 1e-9)
	assert.True(t, impostor.Released())
	assert.Equal(t, 1, s.Len())
}

func TestSamplerGetOrCreateString(t *testing.T) {
	s := NewSampler()

	h1, l, err := s.GetOrCreateString("M 0 0 L 30 40")
	require.NoError(t, err)
	assert.InDelta(t, 50, l, 1e-9)

	h2, _, err := s.GetOrCreateString("M0,0 L30,40")
	require.NoError(t, err)
	assert.Same(t, h1, h2, "equivalent spellings share an entry")

	h, _, err := s.GetOrCreateString("")
	require.NoError(t, err)
	assert.Nil(t, h)

	_, _, err = s.GetOrCreateString("M 0 0 X")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestSamplerSampleMemoized(t *testing.T) {
	s := NewSampler()
	p := distinctPath(20)

	a := s.Sample(p)
	b := s.Sample(p)
	require.NotEmpty(t, a.Samples)
	assert.Same(t, &a.Samples[0], &b.Samples[0])
	assert.Equal(t, DefaultSampleDistance, a.SampleDistance)
}

func TestSamplerClearReleases(t *testing.T) {
	s := NewSampler()
	h, _ := s.GetOrCreate(distinctPath(1))
	s.Clear()

	assert.Zero(t, s.Len())
	assert.True(t, h.Released())
	_, _, err := h.PointAndTangentAt(1)
	assert.True(t, errors.Is(err, ErrReleased))

	// Still usable afterwards.
	h2, _ := s.GetOrCreate(distinctPath(1))
	assert.False(t, h2.Released())
	s.Dispose()
	assert.True(t, h2.Released())
}

func BenchmarkSamplerGetOrCreate(b *testing.B) {
	s := NewSampler()
	paths := make([]*Path, 8)
	for i := range paths {
		paths[i] = NewGenerator(WithSeed(int64(i))).Generate(zigzagAnchors(10))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.GetOrCreate(paths[i%len(paths)])
	}
}

func ExampleSampler() {
	s := NewSampler()
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(30, 40)

	table := s.Sample(p)
	sp, _ := table.Locate(25)
	fmt.Printf("%d samples, length %.0f, midpoint (%.0f, %.0f)\n", table.Len(), table.TotalLength, sp.X, sp.Y)
	// Output: 11 samples, length 50, midpoint (15, 20)
}

func TestInterpolateAngleIsLinear(t *testing.T) {
	samples := []SamplePoint{
		{X: 0, Y: 0, Angle: 3.0},
		{X: 5, Y: 0, Angle: -3.0, Distance: 5},
	}
	sp, ok := Interpolate(samples, 2.5, 5)
	require.True(t, ok)
	assert.InDelta(t, 0, sp.Angle, 1e-12)
	assert.True(t, between(sp.Angle, -3.0, 3.0))
}

// leftwardWiggle heads in -X while swinging above and below the axis, so
// its tangent crosses the ±π seam several times.
func leftwardWiggle() *Path {
	p := NewPath()
	p.MoveTo(200, 0)
	p.CubicTo(150, 20, 150, -20, 100, 0)
	p.CubicTo(50, 20, 50, -20, 0, 0)
	return p
}

func TestGenerateSamplesUnwrapsAngles(t *testing.T) {
	m := MeasurePath(leftwardWiggle())
	samples := GenerateSamples(m, m.TotalLength(), 5)
	require.Greater(t, len(samples), 10)

	crossed := false
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1].Angle, samples[i].Angle
		assert.LessOrEqual(t, math.Abs(b-a), math.Pi, "samples %d and %d", i-1, i)
		if math.Abs(math.Remainder(a, 2*math.Pi)) > math.Pi/2 && (math.Remainder(a, 2*math.Pi) > 0) != (math.Remainder(b, 2*math.Pi) > 0) {
			crossed = true
		}
	}
	assert.True(t, crossed, "the path crosses the seam")

	for d := 0.0; d < m.TotalLength(); d += 0.9 {
		sp, ok := Interpolate(samples, d, 5)
		require.True(t, ok)
		lo := samples[int(d/5)]
		hi := samples[min(int(d/5)+1, len(samples)-1)]
		assert.True(t, between(sp.Angle, lo.Angle, hi.Angle), "d=%v: angle %v outside [%v, %v]", d, sp.Angle, lo.Angle, hi.Angle)
		assert.Less(t, math.Cos(sp.Angle), 0.0, "d=%v: heading stays leftward", d)
	}
}
