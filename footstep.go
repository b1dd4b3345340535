package trail

import (
	"fmt"
	"math"
)

// Side tells which foot a Footstep belongs to.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Footstep is one oriented footprint. Angle is the rendering angle in
// degrees: the tangent direction rotated a quarter turn, so that a glyph
// drawn pointing up faces the direction of travel.
type Footstep struct {
	X, Y  float64
	Angle float64
	Side  Side
	ID    int
}

// Point returns the footstep position.
func (f Footstep) Point() Point {
	return Pt(f.X, f.Y)
}

// FootstepConfig controls footprint placement.
//   - Stride: arc length between successive left feet.
//   - FootSpacing: forward offset of the paired right foot.
//   - FootOffset: sideways displacement of each foot from the centerline.
type FootstepConfig struct {
	Stride      float64
	FootSpacing float64
	FootOffset  float64
}

// Valid reports whether the config can be walked.
func (c FootstepConfig) Valid() bool {
	return c.Stride > 0 && !math.IsInf(c.Stride, 0) && isFinite(c.FootSpacing) && isFinite(c.FootOffset)
}

// Viewport is the size class of the rendering surface.
type Viewport uint8

const (
	Mobile Viewport = iota
	Tablet
	Desktop
)

// Viewport breakpoints in CSS pixels.
const (
	TabletMinWidth  = 768
	DesktopMinWidth = 1024
)

func (v Viewport) String() string {
	switch v {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// ViewportFor classifies a surface width in pixels.
func ViewportFor(width int) Viewport {
	switch {
	case width < TabletMinWidth:
		return Mobile
	case width < DesktopMinWidth:
		return Tablet
	default:
		return Desktop
	}
}

// ParseViewport maps "mobile", "tablet" or "desktop" to a Viewport.
func ParseViewport(s string) (Viewport, bool) {
	switch s {
	case "mobile":
		return Mobile, true
	case "tablet":
		return Tablet, true
	case "desktop":
		return Desktop, true
	}
	return Desktop, false
}

// DefaultFootstepConfig returns the placement config for a viewport.
func DefaultFootstepConfig(v Viewport) FootstepConfig {
	switch v {
	case Mobile:
		return FootstepConfig{Stride: 28, FootSpacing: 14, FootOffset: 6}
	case Tablet:
		return FootstepConfig{Stride: 36, FootSpacing: 18, FootOffset: 8}
	default:
		return FootstepConfig{Stride: 44, FootSpacing: 22, FootOffset: 10}
	}
}

// MinPixelDistance is the smallest gap kept between consecutive footprints
// by Thin for a viewport.
func MinPixelDistance(v Viewport) float64 {
	switch v {
	case Mobile:
		return 15
	case Tablet:
		return 18
	default:
		return 22
	}
}

// Locator resolves an arc length on a path to a sample.
// SampleTable and *Handle implement it.
type Locator interface {
	Locate(distance float64) (SamplePoint, error)
}

// RevealedDistance converts "anchors revealed so far" into arc length:
// totalLength * revealedIndex / (totalAnchors-1), clamped to [0, totalLength].
func RevealedDistance(totalLength float64, revealedIndex, totalAnchors int) float64 {
	if totalAnchors < 2 || !(totalLength > 0) {
		return 0
	}
	return clamp(totalLength*float64(revealedIndex)/float64(totalAnchors-1), 0, totalLength)
}

// GenerateFootsteps places alternating left/right footprints from the start
// of the path up to maxDistance (clamped to [0, totalLength]). IDs start at
// zero. A locate error ends the walk early with the steps placed so far.
func GenerateFootsteps(loc Locator, totalLength, maxDistance float64, cfg FootstepConfig) []Footstep {
	if loc == nil || !(totalLength > 0) {
		return nil
	}
	if !cfg.Valid() {
		Logger().Warn("trail: invalid footstep config", "stride", cfg.Stride, "spacing", cfg.FootSpacing, "offset", cfg.FootOffset)
		return nil
	}
	maxDistance = clamp(maxDistance, 0, totalLength)

	w := footWalker{loc: loc, cfg: cfg, bound: maxDistance}
	w.walk(0, maxDistance)
	if w.err != nil {
		Logger().Warn("trail: footstep generation stopped early", "placed", len(w.steps), "err", w.err)
	}
	return w.steps
}

// maxWalkSteps caps the left feet a single walk may place.
const maxWalkSteps = 1 << 20

// footWalker places steps on the stride grid. Right feet past bound are
// clamped to it or skipped. One-shot generation bounds at maxDistance; a
// stream bounds at the path's end, so a chunked stream places exactly the
// one-shot steps for the whole path, in order.
type footWalker struct {
	loc    Locator
	cfg    FootstepConfig
	bound  float64
	nextID int
	steps  []Footstep
	err    error
}

// walk places the left feet whose grid distance lies in [start, end) and
// their paired right feet.
func (w *footWalker) walk(start, end float64) {
	stride := w.cfg.Stride
	if n := (end - start) / stride; n > maxWalkSteps || start/stride > math.MaxInt32 {
		w.err = fmt.Errorf("%w: %.0f steps from %g", ErrTooManySteps, n, start)
		return
	}
	first := int(math.Ceil(start / stride))
	for i := first; ; i++ {
		dist := float64(i) * stride
		if dist >= end {
			return
		}
		if !w.place(dist, -w.cfg.FootOffset, Left) {
			return
		}

		right := dist + w.cfg.FootSpacing
		if right > w.bound {
			if w.bound-dist > 1.5*stride {
				continue
			}
			right = w.bound
		}
		if !w.place(right, w.cfg.FootOffset, Right) {
			return
		}
	}
}

func (w *footWalker) place(dist, offset float64, side Side) bool {
	sp, err := w.loc.Locate(dist)
	if err != nil {
		w.err = err
		return false
	}
	normal := Unit(sp.Angle).Perp()
	pos := sp.Point().Add(normal.Mul(offset))
	w.steps = append(w.steps, Footstep{
		X:     pos.X,
		Y:     pos.Y,
		Angle: sp.Angle*180/math.Pi + 90,
		Side:  side,
		ID:    w.nextID,
	})
	w.nextID++
	return true
}

// Thin drops footprints closer than minPixelDistance to the previously kept
// one. The first footprint is always kept. The input is not modified.
func Thin(steps []Footstep, minPixelDistance float64) []Footstep {
	if len(steps) == 0 {
		return nil
	}
	minSq := minPixelDistance * minPixelDistance
	out := make([]Footstep, 0, len(steps))
	out = append(out, steps[0])
	last := steps[0].Point()
	for _, s := range steps[1:] {
		p := s.Point()
		if p.DistanceSq(last) >= minSq {
			out = append(out, s)
			last = p
		}
	}
	return out
}

// PlaceFootsteps generates footprints with the viewport's default config and
// thins them to the viewport's minimum spacing.
func PlaceFootsteps(loc Locator, totalLength, maxDistance float64, v Viewport) []Footstep {
	steps := GenerateFootsteps(loc, totalLength, maxDistance, DefaultFootstepConfig(v))
	return Thin(steps, MinPixelDistance(v))
}
