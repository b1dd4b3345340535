package trail

import (
	"slices"
	"sync"
)

// TrailOption configures a Trail.
type TrailOption func(*trailOptions)

type trailOptions struct {
	generator []GeneratorOption
	sampler   *Sampler
	samplerOp []SamplerOption
	stream    []StreamOption
	viewport  Viewport
}

// WithGenerator sets the initial generation parameters.
func WithGenerator(opts ...GeneratorOption) TrailOption {
	return func(o *trailOptions) {
		o.generator = append(o.generator, opts...)
	}
}

// WithSampler shares an existing sampler instead of creating one.
// The trail does not dispose a shared sampler.
func WithSampler(s *Sampler) TrailOption {
	return func(o *trailOptions) {
		o.sampler = s
	}
}

// WithSamplerOptions configures the trail's own sampler.
func WithSamplerOptions(opts ...SamplerOption) TrailOption {
	return func(o *trailOptions) {
		o.samplerOp = append(o.samplerOp, opts...)
	}
}

// WithStreamOptions configures the footstep stream.
func WithStreamOptions(opts ...StreamOption) TrailOption {
	return func(o *trailOptions) {
		o.stream = append(o.stream, opts...)
	}
}

// WithViewport sets the initial viewport class.
func WithViewport(v Viewport) TrailOption {
	return func(o *trailOptions) {
		o.viewport = v
	}
}

// Trail ties the pipeline together for one timeline: anchors become a
// path, the path is sampled through a Sampler, and footsteps stream along
// it as anchors are revealed.
//
// Trail is safe for concurrent use.
type Trail struct {
	mu          sync.Mutex
	sampler     *Sampler
	ownsSampler bool
	stream      *Stream

	anchors  []Point
	points   int // finite anchors that shaped the path
	params   Params
	viewport Viewport

	path     *Path
	table    SampleTable
	total    float64
	revealed int
}

// NewTrail creates an empty trail. Call SetAnchors to give it a path.
func NewTrail(opts ...TrailOption) *Trail {
	o := trailOptions{viewport: Desktop}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Trail{
		sampler:  o.sampler,
		params:   NewGenerator(o.generator...).Params(),
		viewport: o.viewport,
	}
	if t.sampler == nil {
		t.sampler = NewSampler(o.samplerOp...)
		t.ownsSampler = true
	}
	t.stream = NewStream(nil, 0, DefaultFootstepConfig(o.viewport), o.stream...)
	return t
}

// SetAnchors replaces the anchors and regenerates the path. It reports
// whether anything changed; identical anchors keep the current path and
// footsteps.
func (t *Trail) SetAnchors(anchors []Point) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if slices.Equal(anchors, t.anchors) && t.path != nil {
		return false
	}
	t.anchors = slices.Clone(anchors)
	t.regenerateLocked()
	return true
}

// SetParams replaces the generation parameters and regenerates the path
// if the resolved parameters differ from the current ones.
func (t *Trail) SetParams(p Params) bool {
	resolved := NewGenerator(
		WithWaviness(p.Waviness),
		WithSmoothness(p.Smoothness),
		WithSideOffset(p.SideOffset),
		WithSeed(p.Seed),
	).Params()

	t.mu.Lock()
	defer t.mu.Unlock()

	if resolved == t.params {
		return false
	}
	t.params = resolved
	t.regenerateLocked()
	return true
}

// Params returns the current generation parameters.
func (t *Trail) Params() Params {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params
}

// SetViewport switches footstep sizing. Streamed footsteps restart when the
// config changes; the revealed index is replayed.
func (t *Trail) SetViewport(v Viewport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v == t.viewport {
		return
	}
	t.viewport = v
	t.stream.SetConfig(DefaultFootstepConfig(v))
	t.replayLocked()
}

// Viewport returns the current viewport class.
func (t *Trail) Viewport() Viewport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewport
}

// Reveal extends the footstep stream to the given anchor index. Revealing
// a lower index than before does not remove footsteps.
func (t *Trail) Reveal(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index > t.revealed {
		t.revealed = index
	}
	return t.stream.Extend(RevealedDistance(t.total, index, t.points))
}

// Revealed returns the highest anchor index revealed so far.
func (t *Trail) Revealed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revealed
}

// Tick advances the footstep stream. See Stream.Tick.
func (t *Trail) Tick() bool {
	return t.stream.Tick()
}

// Footsteps returns the streamed footsteps, flushing pending work.
func (t *Trail) Footsteps() []Footstep {
	return t.stream.Footsteps()
}

// StreamState returns the phase of the footstep stream.
func (t *Trail) StreamState() StreamState {
	return t.stream.State()
}

// Snapshot places and thins footsteps up to anchor index in one shot,
// independently of the stream.
func (t *Trail) Snapshot(index int) []Footstep {
	t.mu.Lock()
	table, total, n, v := t.table, t.total, t.points, t.viewport
	t.mu.Unlock()

	if table.Len() == 0 {
		return nil
	}
	return PlaceFootsteps(table, total, RevealedDistance(total, index, n), v)
}

// PathData returns the serialized path, or "" when there is none.
func (t *Trail) PathData() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path.String()
}

// Path returns a copy of the current path, or nil.
func (t *Trail) Path() *Path {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path.Clone()
}

// Samples returns the sample table of the current path.
func (t *Trail) Samples() SampleTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.table
}

// TotalLength returns the arc length of the current path.
func (t *Trail) TotalLength() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Dispose drops the path and footsteps and releases the sampler's cache if
// the trail owns it. The trail can be reused by calling SetAnchors.
func (t *Trail) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ownsSampler {
		t.sampler.Dispose()
	}
	t.anchors = nil
	t.points = 0
	t.path = nil
	t.table = SampleTable{}
	t.total = 0
	t.revealed = 0
	t.stream.SetLocator(nil, 0)
}

func (t *Trail) regenerateLocked() {
	gen := NewGenerator(
		WithWaviness(t.params.Waviness),
		WithSmoothness(t.params.Smoothness),
		WithSideOffset(t.params.SideOffset),
		WithSeed(t.params.Seed),
	)
	// Reveal indexes count only the anchors the path passes through.
	pts := finiteAnchors(t.anchors)
	t.points = len(pts)
	t.path = gen.Generate(pts)

	h, total := t.sampler.GetOrCreate(t.path)
	if h == nil {
		t.table = SampleTable{}
		t.total = 0
		t.stream.SetLocator(nil, 0)
		return
	}
	t.table = h.Samples(DefaultSampleDistance)
	t.total = total
	// The table is a value, so the stream keeps working even if the
	// sampler evicts the handle later.
	t.stream.SetLocator(t.table, total)
	t.replayLocked()
}

// replayLocked re-requests the revealed distance after the stream was reset.
func (t *Trail) replayLocked() {
	if t.revealed > 0 {
		t.stream.Extend(RevealedDistance(t.total, t.revealed, t.points))
	}
}
