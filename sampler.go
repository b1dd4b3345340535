package trail

import (
	"math"
	"sync"
	"time"

	"github.com/NehoraiHadad/trail/internal/cache"
)

// Sampler defaults.
const (
	DefaultSampleDistance = 5.0
	DefaultCacheCapacity  = 10
	DefaultCacheTTL       = 30 * time.Second
)

// SamplePoint is a position on a path together with the tangent direction
// (radians) and the arc length at which it was taken. Within a table the
// angle is continuous and may leave (-π, π].
type SamplePoint struct {
	X, Y     float64
	Angle    float64
	Distance float64
}

// Point returns the sample position.
func (s SamplePoint) Point() Point {
	return Pt(s.X, s.Y)
}

// SampleTable is an evenly spaced arc-length table of a path.
type SampleTable struct {
	Samples        []SamplePoint
	TotalLength    float64
	SampleDistance float64
}

// Len returns the number of samples.
func (t SampleTable) Len() int {
	return len(t.Samples)
}

// Locate implements Locator by interpolating the table.
func (t SampleTable) Locate(distance float64) (SamplePoint, error) {
	sp, ok := Interpolate(t.Samples, distance, t.SampleDistance)
	if !ok {
		return SamplePoint{}, ErrEmptyTable
	}
	return sp, nil
}

// Handle is a sampler cache entry: a measured path plus memoized sample
// tables. It is released when evicted from its Sampler.
type Handle struct {
	key  uint64
	desc string
	geom *MeasuredPath

	mu     sync.Mutex
	tables map[float64]SampleTable
}

// Description returns the serialized path the handle was built from.
func (h *Handle) Description() string {
	return h.desc
}

// TotalLength implements Geometry.
func (h *Handle) TotalLength() float64 {
	return h.geom.TotalLength()
}

// PointAndTangentAt implements Geometry.
func (h *Handle) PointAndTangentAt(distance float64) (Point, float64, error) {
	return h.geom.PointAndTangentAt(distance)
}

// Locate implements Locator by measuring the path directly.
func (h *Handle) Locate(distance float64) (SamplePoint, error) {
	pt, angle, err := h.geom.PointAndTangentAt(distance)
	if err != nil {
		return SamplePoint{}, err
	}
	return SamplePoint{X: pt.X, Y: pt.Y, Angle: angle, Distance: clamp(distance, 0, h.geom.TotalLength())}, nil
}

// Released reports whether the handle has been evicted or disposed.
func (h *Handle) Released() bool {
	return h.geom.Released()
}

// Samples returns the handle's sample table at sampleDistance, computing it
// once per distance for the lifetime of the handle.
func (h *Handle) Samples(sampleDistance float64) SampleTable {
	if !(sampleDistance > 0) {
		sampleDistance = DefaultSampleDistance
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.tables[sampleDistance]; ok {
		return t
	}
	t := SampleTable{
		Samples:        GenerateSamples(h, h.TotalLength(), sampleDistance),
		TotalLength:    h.TotalLength(),
		SampleDistance: sampleDistance,
	}
	// A table cut short by a release is not worth remembering.
	if !h.Released() {
		if h.tables == nil {
			h.tables = make(map[float64]SampleTable, 1)
		}
		h.tables[sampleDistance] = t
	}
	return t
}

func (h *Handle) release() {
	h.geom.Release()
}

// SamplerOption configures a Sampler.
type SamplerOption func(*samplerOptions)

type samplerOptions struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// WithCapacity sets the maximum number of cached paths.
func WithCapacity(n int) SamplerOption {
	return func(o *samplerOptions) {
		o.capacity = n
	}
}

// WithTTL sets how long an unused path stays cached. 0 disables expiry.
func WithTTL(d time.Duration) SamplerOption {
	return func(o *samplerOptions) {
		o.ttl = d
	}
}

// WithClock sets the time source used for staleness checks.
func WithClock(now func() time.Time) SamplerOption {
	return func(o *samplerOptions) {
		o.now = now
	}
}

// Sampler memoizes measured paths by description, with least recently
// used eviction and a staleness window. Evicted handles are released.
//
// Sampler is safe for concurrent use.
type Sampler struct {
	mu    sync.Mutex
	cache *cache.Cache[uint64, *Handle]
}

// NewSampler creates a sampler with the given options.
func NewSampler(opts ...SamplerOption) *Sampler {
	o := samplerOptions{
		capacity: DefaultCacheCapacity,
		ttl:      DefaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		o.capacity = DefaultCacheCapacity
	}

	c := cache.NewTTL[uint64, *Handle](o.capacity, o.ttl, o.now)
	c.SetEvictHook(func(key uint64, h *Handle) {
		h.release()
		Logger().Debug("trail: sampler evicted path", "key", key, "length", h.TotalLength())
	})
	return &Sampler{cache: c}
}

// GetOrCreate returns the cached handle for p and its total length,
// measuring and caching p on a miss. A nil or empty path yields (nil, 0).
func (s *Sampler) GetOrCreate(p *Path) (*Handle, float64) {
	if p.IsEmpty() {
		return nil, 0
	}
	h := s.getOrCreate(p.String(), func() *MeasuredPath { return MeasurePath(p) })
	return h, h.TotalLength()
}

// GetOrCreateString is GetOrCreate for a serialized description.
func (s *Sampler) GetOrCreateString(desc string) (*Handle, float64, error) {
	p, err := ParsePath(desc)
	if err != nil {
		return nil, 0, err
	}
	if p.IsEmpty() {
		return nil, 0, nil
	}
	// Re-serialize so equivalent spellings share an entry.
	h := s.getOrCreate(p.String(), func() *MeasuredPath { return MeasurePath(p) })
	return h, h.TotalLength(), nil
}

func (s *Sampler) getOrCreate(desc string, measure func() *MeasuredPath) *Handle {
	key := cache.StringHasher(desc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.cache.Get(key); ok {
		if h.desc == desc {
			return h
		}
		// Hash collision: the newcomer takes the slot.
		Logger().Debug("trail: sampler key collision", "key", key)
	}
	h := &Handle{key: key, desc: desc, geom: measure()}
	s.cache.Set(key, h)
	return h
}

// Sample returns the default sample table for p, or an empty table for a
// nil or empty path.
func (s *Sampler) Sample(p *Path) SampleTable {
	h, _ := s.GetOrCreate(p)
	if h == nil {
		return SampleTable{SampleDistance: DefaultSampleDistance}
	}
	return h.Samples(DefaultSampleDistance)
}

// Len returns the number of cached paths.
func (s *Sampler) Len() int {
	return s.cache.Len()
}

// Descriptions returns the cached path descriptions, most recently used first.
func (s *Sampler) Descriptions() []string {
	keys := s.cache.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if h, ok := s.cache.Peek(k); ok {
			out = append(out, h.desc)
		}
	}
	return out
}

// Stats returns cache statistics.
func (s *Sampler) Stats() cache.Stats {
	return s.cache.Stats()
}

// Purge releases the paths not used within the TTL and returns how many
// were dropped. Stale entries are otherwise only dropped on insert.
func (s *Sampler) Purge() int {
	return s.cache.Purge()
}

// Clear releases and forgets every cached path.
func (s *Sampler) Clear() {
	s.cache.Clear()
}

// Dispose releases every cached path. The sampler stays usable.
func (s *Sampler) Dispose() {
	s.Clear()
}

// GenerateSamples walks g from 0 to totalLength every sampleDistance
// (default 5) and always ends with a sample at totalLength itself. Angles
// come from a forward difference one unit ahead (backward at the very
// end) and are unwrapped, so neighbouring samples never differ by more
// than π and a linear blend turns the short way. A measurement error ends
// the walk early and the samples gathered so far are returned.
func GenerateSamples(g Geometry, totalLength, sampleDistance float64) []SamplePoint {
	if g == nil || !(totalLength >= 0) || math.IsInf(totalLength, 0) {
		return nil
	}
	if !(sampleDistance > 0) {
		sampleDistance = DefaultSampleDistance
	}

	samples := make([]SamplePoint, 0, int(math.Ceil(totalLength/sampleDistance))+1)
	for i := 0; ; i++ {
		d := float64(i) * sampleDistance
		if d >= totalLength {
			break
		}
		sp, err := sampleAt(g, d, totalLength)
		if err != nil {
			Logger().Warn("trail: sampling stopped early", "distance", d, "samples", len(samples), "err", err)
			return samples
		}
		samples = appendUnwrapped(samples, sp)
	}

	sp, err := sampleAt(g, totalLength, totalLength)
	if err != nil {
		Logger().Warn("trail: sampling stopped early", "distance", totalLength, "samples", len(samples), "err", err)
		return samples
	}
	return appendUnwrapped(samples, sp)
}

// appendUnwrapped appends sp with its angle moved by whole turns to lie
// within π of the previous sample's.
func appendUnwrapped(samples []SamplePoint, sp SamplePoint) []SamplePoint {
	if n := len(samples); n > 0 {
		prev := samples[n-1].Angle
		sp.Angle = prev + angleDelta(prev, sp.Angle)
	}
	return append(samples, sp)
}

// sampleAt measures d and estimates the tangent by finite difference.
func sampleAt(g Geometry, d, totalLength float64) (SamplePoint, error) {
	pt, tangent, err := g.PointAndTangentAt(d)
	if err != nil {
		return SamplePoint{}, err
	}

	var delta Vec2
	if d+1 <= totalLength {
		ahead, _, err := g.PointAndTangentAt(d + 1)
		if err != nil {
			return SamplePoint{}, err
		}
		delta = ahead.Sub(pt)
	} else {
		behind, _, err := g.PointAndTangentAt(math.Max(d-1, 0))
		if err != nil {
			return SamplePoint{}, err
		}
		delta = pt.Sub(behind)
	}

	angle := tangent
	if !delta.IsZero() {
		angle = delta.Atan2()
	}
	return SamplePoint{X: pt.X, Y: pt.Y, Angle: angle, Distance: d}, nil
}

// Interpolate returns the point at distance along a table produced by
// GenerateSamples, linearly interpolating position and angle between the
// bracketing samples. Distances before the
// start return the first sample and distances past the end the last. It
// reports false for an empty table.
func Interpolate(samples []SamplePoint, distance, sampleDistance float64) (SamplePoint, bool) {
	n := len(samples)
	if n == 0 {
		return SamplePoint{}, false
	}
	if !(sampleDistance > 0) {
		sampleDistance = DefaultSampleDistance
	}
	last := n - 1

	idx := distance / sampleDistance
	if !(idx > 0) {
		return samples[0], true
	}
	if idx >= float64(last) || distance >= sampleDistanceAt(samples, last, sampleDistance) {
		return samples[last], true
	}

	lo := int(idx)
	hi := lo + 1
	d0 := sampleDistanceAt(samples, lo, sampleDistance)
	d1 := sampleDistanceAt(samples, hi, sampleDistance)
	var frac float64
	if span := d1 - d0; span > 0 {
		frac = clamp((distance-d0)/span, 0, 1)
	}

	a, b := samples[lo], samples[hi]
	return SamplePoint{
		X:        a.X + (b.X-a.X)*frac,
		Y:        a.Y + (b.Y-a.Y)*frac,
		Angle:    a.Angle + (b.Angle-a.Angle)*frac,
		Distance: distance,
	}, true
}

// angleDelta returns b-a wrapped into (-π, π].
func angleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	switch {
	case d > math.Pi:
		d -= 2 * math.Pi
	case d <= -math.Pi:
		d += 2 * math.Pi
	}
	return d
}

// sampleDistanceAt is the arc length of sample i. Samples sit on the
// regular grid except the final one, which sits at the path's end.
func sampleDistanceAt(samples []SamplePoint, i int, sampleDistance float64) float64 {
	if i == len(samples)-1 && samples[i].Distance > 0 {
		return samples[i].Distance
	}
	return float64(i) * sampleDistance
}
