package trail

// LCG constants. The modulus keeps every intermediate product well inside
// 32-bit signed range, so the stream is identical on any platform.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Rand is a small deterministic linear congruential generator.
//
// It is not safe for concurrent use; each Generate call owns its own Rand.
type Rand struct {
	state int64
}

// NewRand returns a generator seeded with seed.
// Negative seeds are folded into [0, 233280).
func NewRand(seed int64) *Rand {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &Rand{state: s}
}

// Next advances the generator and returns a value in [0, 1).
func (r *Rand) Next() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// Centered returns Next()-0.5, a value in [-0.5, 0.5).
func (r *Rand) Centered() float64 {
	return r.Next() - 0.5
}
