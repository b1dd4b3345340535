package trail

import "math"

// Default generation parameters.
const (
	DefaultWaviness   = 1.0
	DefaultSmoothness = 0.7
	DefaultSideOffset = 30.0
	DefaultSeed       = 12345
)

// Visual tuning for control-point synthesis. These values shape the look
// of the trail only; determinism does not depend on them.
const (
	sideJitter     = 20 // lateral jitter range around sideOffset (±10)
	verticalJitter = 30 // vertical jitter range (±15)

	firstLead      = 0.3  // cp1 forward fraction on the first segment
	tailLead       = 0.35 // cp2 backward fraction on first and last segments
	firstMeander1  = 0.4
	firstMeander2  = 0.5
	firstCurvature = 45 // ±22.5
	firstCurveBack = 0.7

	lastMeander1  = 0.45
	lastMeander2  = 0.35
	lastCurvature = 35 // ±17.5
	lastCurveBack = 0.8

	midMeander1  = 0.4
	midMeander2  = 0.45
	midCurvature = 40
	midSeek1     = 30 // ±15
	midSeek2     = 25 // ±12.5
	midNextBlend = 0.25

	smoothPull = 0.4
)

// GeneratorOption configures a Generator.
type GeneratorOption func(*generatorOptions)

type generatorOptions struct {
	waviness   float64
	smoothness float64
	sideOffset float64
	seed       int64
}

func defaultGeneratorOptions() generatorOptions {
	return generatorOptions{
		waviness:   DefaultWaviness,
		smoothness: DefaultSmoothness,
		sideOffset: DefaultSideOffset,
		seed:       DefaultSeed,
	}
}

// WithWaviness sets the amount of random lateral meander, typically 0.5-1.3.
// Negative values are treated as 0.
func WithWaviness(w float64) GeneratorOption {
	return func(o *generatorOptions) {
		o.waviness = w
	}
}

// WithSmoothness sets how strongly control points follow the segment
// direction, clamped to [0, 1].
func WithSmoothness(s float64) GeneratorOption {
	return func(o *generatorOptions) {
		o.smoothness = s
	}
}

// WithSideOffset sets the base lateral displacement of trail points from
// their anchors.
func WithSideOffset(d float64) GeneratorOption {
	return func(o *generatorOptions) {
		o.sideOffset = d
	}
}

// WithSeed sets the seed of the generator's random stream.
func WithSeed(seed int64) GeneratorOption {
	return func(o *generatorOptions) {
		o.seed = seed
	}
}

// Params are the resolved generation parameters.
type Params struct {
	Waviness   float64
	Smoothness float64
	SideOffset float64
	Seed       int64
}

// Generator turns ordered anchors into an organic cubic Bezier trail.
// A Generator holds no random state between calls; every Generate call
// starts a fresh stream from the seed, so it is safe for concurrent use.
type Generator struct {
	params Params
}

// NewGenerator creates a generator with the given options.
func NewGenerator(opts ...GeneratorOption) *Generator {
	o := defaultGeneratorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.waviness > 0) {
		o.waviness = 0
	}
	o.smoothness = clamp(o.smoothness, 0, 1)
	if !isFinite(o.sideOffset) {
		o.sideOffset = DefaultSideOffset
	}
	return &Generator{params: Params{
		Waviness:   o.waviness,
		Smoothness: o.smoothness,
		SideOffset: o.sideOffset,
		Seed:       o.seed,
	}}
}

// Params returns the generator's resolved parameters.
func (g *Generator) Params() Params {
	return g.params
}

// Generate returns a path passing near every anchor in order, with exactly
// len(anchors)-1 cubic segments. Non-finite anchors are dropped. Fewer than
// two usable anchors yield nil.
func (g *Generator) Generate(anchors []Point) *Path {
	anchors = finiteAnchors(anchors)
	if len(anchors) < 2 {
		return nil
	}

	rng := NewRand(g.params.Seed)
	pts := g.trailPoints(anchors, rng)

	p := NewPath()
	p.MoveTo(pts[0].X, pts[0].Y)
	total := len(pts) - 1
	for i := 1; i <= total; i++ {
		var next *Point
		if i+1 < len(pts) {
			next = &pts[i+1]
		}
		cp1, cp2 := g.controlPoints(pts[i-1], pts[i], next, i, total, rng)
		p.CubicTo(cp1.X, cp1.Y, cp2.X, cp2.Y, pts[i].X, pts[i].Y)
	}
	return p
}

// GeneratePath is a convenience wrapper returning the serialized path, or ""
// when there are fewer than two anchors.
func GeneratePath(anchors []Point, opts ...GeneratorOption) string {
	return NewGenerator(opts...).Generate(anchors).String()
}

// trailPoints offsets each anchor sideways, alternating direction by index
// parity, with seeded jitter.
func (g *Generator) trailPoints(anchors []Point, rng *Rand) []Point {
	pts := make([]Point, len(anchors))
	for i, a := range anchors {
		dir := 1.0
		if i%2 == 1 {
			dir = -1.0
		}
		lateral := dir * (g.params.SideOffset + rng.Centered()*sideJitter)
		vertical := rng.Centered() * verticalJitter
		pts[i] = Pt(a.X+lateral, a.Y+vertical)
	}
	return pts
}

// controlPoints synthesizes the two control points of segment i (1-based)
// running from prev to curr.
func (g *Generator) controlPoints(prev, curr Point, next *Point, i, total int, rng *Rand) (Point, Point) {
	w := g.params.Waviness
	s := g.params.Smoothness
	// Index- and seed-driven sideways terms fade out with waviness so the
	// trail straightens as waviness approaches zero.
	wobble := math.Min(w, 1)

	d := curr.Sub(prev)
	length := d.Length()
	var perp Vec2
	if length > 0 {
		perp = V2(-d.Y/length, d.X/length)
	}

	switch {
	case i == 1:
		meander1 := w * length * firstMeander1 * rng.Centered()
		meander2 := w * length * firstMeander2 * rng.Centered()
		curvature := rng.Centered() * firstCurvature * wobble

		cp1 := prev.Add(d.Mul(firstLead)).Add(perp.Mul(meander1)).Add(V2(curvature, 0))
		cp2 := curr.Add(d.Mul(-tailLead)).Add(perp.Mul(meander2)).Add(V2(-firstCurveBack*curvature, 0))
		return cp1, cp2

	case i == total:
		meander1 := w * length * lastMeander1 * rng.Centered()
		meander2 := w * length * lastMeander2 * rng.Centered()
		curvature := rng.Centered() * lastCurvature * wobble

		cp1 := prev.Add(d.Mul(s * smoothPull)).Add(perp.Mul(meander1)).Add(V2(curvature, 0))
		cp2 := curr.Add(d.Mul(-tailLead)).Add(perp.Mul(meander2)).Add(V2(-lastCurveBack*curvature, 0))
		return cp1, cp2

	default:
		nextD := d
		if next != nil {
			nextD = next.Sub(curr)
		}
		meander1 := w * length * midMeander1 * rng.Centered()
		meander2 := w * length * midMeander2 * rng.Centered()
		curvature := rng.Centered() * midCurvature
		seek1 := rng.Centered() * midSeek1
		seek2 := rng.Centered() * midSeek2

		fi := float64(i)
		terrain1 := math.Sin(fi*0.8) * 20
		terrain2 := math.Cos(fi*1.1) * 15
		wind1 := math.Sin(fi*1.5) * 12
		wind2 := math.Cos(fi*1.3) * 10

		drift1 := (curvature + terrain1 + wind1 + seek1) * wobble
		drift2 := (-firstCurveBack*curvature + terrain2 + wind2 + seek2) * wobble

		blendK := midNextBlend * wobble
		pull := d.Mul(1 - blendK).Add(nextD.Mul(blendK)).Mul(s * smoothPull)

		cp1 := prev.Add(d.Mul(s * smoothPull)).Add(perp.Mul(meander1)).Add(V2(drift1, 0))
		cp2 := curr.Add(pull.Mul(-1)).Add(perp.Mul(meander2)).Add(V2(drift2, 0))
		return cp1, cp2
	}
}

func finiteAnchors(anchors []Point) []Point {
	for i, a := range anchors {
		if a.IsFinite() {
			continue
		}
		// Copy on first bad anchor so callers' slices are never modified.
		out := make([]Point, 0, len(anchors)-1)
		out = append(out, anchors[:i]...)
		for _, b := range anchors[i+1:] {
			if b.IsFinite() {
				out = append(out, b)
			}
		}
		Logger().Warn("trail: dropped non-finite anchors", "given", len(anchors), "kept", len(out))
		return out
	}
	return anchors
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
