package trail

import (
	"sync"
	"time"

	"github.com/NehoraiHadad/trail/internal/cache"
	"github.com/NehoraiHadad/trail/internal/debounce"
)

// Stream defaults.
const (
	DefaultDebounce         = debounce.DefaultWindow
	DefaultMaxFootsteps     = 2000
	DefaultKeptFootsteps    = 1500
	DefaultSegmentCacheSize = 64
)

// StreamState is the phase of a Stream's extension cycle.
type StreamState uint8

const (
	// StreamIdle has no pending work and nothing new since the last tick.
	StreamIdle StreamState = iota
	// StreamPending has an extension waiting for its debounce window.
	StreamPending
	// StreamExtended has appended footsteps since the last tick.
	StreamExtended
)

func (s StreamState) String() string {
	switch s {
	case StreamPending:
		return "pending"
	case StreamExtended:
		return "extended"
	default:
		return "idle"
	}
}

// segmentKey identifies one computed extension.
type segmentKey struct {
	start, end                  float64
	stride, footSpacing, offset float64
}

// StreamOption configures a Stream.
type StreamOption func(*streamOptions)

type streamOptions struct {
	debounce    time.Duration
	now         func() time.Time
	maxSteps    int
	keptSteps   int
	segmentSize int
	minSpacing  float64
}

// WithDebounce sets the window over which Extend requests coalesce.
func WithDebounce(d time.Duration) StreamOption {
	return func(o *streamOptions) {
		o.debounce = d
	}
}

// WithStreamClock sets the time source of the debounce window.
func WithStreamClock(now func() time.Time) StreamOption {
	return func(o *streamOptions) {
		o.now = now
	}
}

// WithHistory bounds the footstep sequence: once it grows past max, only
// the most recent keep entries are retained.
func WithHistory(max, keep int) StreamOption {
	return func(o *streamOptions) {
		o.maxSteps = max
		o.keptSteps = keep
	}
}

// WithSegmentCacheSize sets how many computed extensions are remembered.
func WithSegmentCacheSize(n int) StreamOption {
	return func(o *streamOptions) {
		o.segmentSize = n
	}
}

// WithStreamMinSpacing drops new footsteps closer than px to the last
// appended one. Existing entries are never touched.
func WithStreamMinSpacing(px float64) StreamOption {
	return func(o *streamOptions) {
		o.minSpacing = px
	}
}

// Stream places footsteps incrementally as more of a path is revealed.
// Footsteps are only ever appended, so their IDs stay stable for
// animation; Reset starts over.
//
// Extension requests are debounced: Extend records a target, and the work
// runs on the first Tick after the window, or immediately on Flush or
// Footsteps.
//
// Stream is safe for concurrent use.
type Stream struct {
	mu          sync.Mutex
	loc         Locator
	totalLength float64
	cfg         FootstepConfig

	pending    *debounce.Cell[float64]
	segments   *cache.Cache[segmentKey, []Footstep]
	maxSteps   int
	keptSteps  int
	minSpacing float64

	steps  []Footstep
	cursor float64
	nextID int
	state  StreamState
}

// NewStream creates a stream over loc, a path of totalLength.
// loc may be nil until SetLocator is called.
func NewStream(loc Locator, totalLength float64, cfg FootstepConfig, opts ...StreamOption) *Stream {
	o := streamOptions{
		debounce:    DefaultDebounce,
		now:         time.Now,
		maxSteps:    DefaultMaxFootsteps,
		keptSteps:   DefaultKeptFootsteps,
		segmentSize: DefaultSegmentCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSteps <= 0 {
		o.maxSteps = DefaultMaxFootsteps
	}
	if o.keptSteps <= 0 || o.keptSteps > o.maxSteps {
		o.keptSteps = o.maxSteps * 3 / 4
	}
	if o.segmentSize <= 0 {
		o.segmentSize = DefaultSegmentCacheSize
	}

	return &Stream{
		loc:         loc,
		totalLength: totalLength,
		cfg:         cfg,
		pending:     debounce.New[float64](o.debounce, o.now),
		segments:    cache.New[segmentKey, []Footstep](o.segmentSize),
		maxSteps:    o.maxSteps,
		keptSteps:   o.keptSteps,
		minSpacing:  o.minSpacing,
	}
}

// Extend requests footsteps up to target (clamped to the path length).
// Targets at or below the cursor, or below an already pending target, are
// ignored. It reports whether the request was accepted.
func (s *Stream) Extend(target float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loc == nil || !s.cfg.Valid() || !(target > s.cursor) {
		return false
	}
	target = clamp(target, 0, s.totalLength)
	if target <= s.cursor {
		return false
	}
	if p, ok := s.pending.Peek(); ok && target <= p {
		return false
	}
	s.pending.Put(target)
	s.state = StreamPending
	return true
}

// Tick runs a pending extension whose debounce window has passed and
// reports whether footsteps were computed. A tick with nothing to do moves
// an Extended stream back to Idle.
func (s *Stream) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target, ok := s.pending.Ready(); ok {
		s.extendLocked(target)
		return true
	}
	if s.state == StreamExtended {
		s.state = StreamIdle
	}
	return false
}

// Flush runs any pending extension now and reports whether it did.
func (s *Stream) Flush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

func (s *Stream) flushLocked() bool {
	target, ok := s.pending.Take()
	if !ok {
		return false
	}
	s.extendLocked(target)
	return true
}

// Footsteps flushes pending work and returns a copy of the sequence.
func (s *Stream) Footsteps() []Footstep {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked()
	out := make([]Footstep, len(s.steps))
	copy(out, s.steps)
	return out
}

// Cursor returns the distance up to which footsteps have been placed.
func (s *Stream) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// State returns the current phase.
func (s *Stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of footsteps placed, without flushing.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Config returns the placement config.
func (s *Stream) Config() FootstepConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Reset clears the sequence, cursor, IDs and computation cache, and
// cancels any pending extension.
func (s *Stream) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Stream) resetLocked() {
	s.pending.Cancel()
	s.segments.Clear()
	s.steps = nil
	s.cursor = 0
	s.nextID = 0
	s.state = StreamIdle
}

// SetLocator switches the stream to a new path and resets it.
func (s *Stream) SetLocator(loc Locator, totalLength float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loc = loc
	s.totalLength = totalLength
	s.resetLocked()
}

// SetConfig changes the placement config, resetting the stream if it differs.
func (s *Stream) SetConfig(cfg FootstepConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg == s.cfg {
		return
	}
	s.cfg = cfg
	s.resetLocked()
}

// extendLocked appends the footsteps for [cursor, target).
// Caller must hold s.mu.
func (s *Stream) extendLocked(target float64) {
	if target <= s.cursor {
		return
	}
	start := s.cursor
	key := segmentKey{
		start:       start,
		end:         target,
		stride:      s.cfg.Stride,
		footSpacing: s.cfg.FootSpacing,
		offset:      s.cfg.FootOffset,
	}

	seg, ok := s.segments.Get(key)
	if !ok {
		w := footWalker{loc: s.loc, cfg: s.cfg, bound: s.totalLength}
		w.walk(start, target)
		seg = w.steps
		if w.err != nil {
			Logger().Warn("trail: footstep extension stopped early",
				"from", start, "to", target, "placed", len(seg), "err", w.err)
		} else {
			s.segments.Set(key, seg)
		}
	}

	added := 0
	minSq := s.minSpacing * s.minSpacing
	for _, f := range seg {
		if minSq > 0 && len(s.steps) > 0 && f.Point().DistanceSq(s.steps[len(s.steps)-1].Point()) < minSq {
			continue
		}
		f.ID = s.nextID
		s.nextID++
		s.steps = append(s.steps, f)
		added++
	}

	if len(s.steps) > s.maxSteps {
		kept := make([]Footstep, s.keptSteps)
		copy(kept, s.steps[len(s.steps)-s.keptSteps:])
		s.steps = kept
	}

	s.cursor = target
	s.state = StreamExtended
	Logger().Debug("trail: stream extended", "from", start, "to", target, "added", added, "total", len(s.steps))
}
