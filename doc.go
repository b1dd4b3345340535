// Package trail generates organic trail paths through a sequence of
// anchors and places footprints along them.
//
// # Overview
//
// The pipeline has three stages:
//
//   - A Generator turns ordered anchors (for example the centers of timeline
//     markers) into a cubic Bezier Path. Generation is fully deterministic:
//     the same anchors, parameters and seed always produce the same path.
//   - A Sampler measures paths by arc length and caches the result, keyed
//     by the serialized path, with least recently used eviction and a
//     staleness window.
//   - GenerateFootsteps and Stream place alternating left and right
//     footprints along the measured path, either in one shot or
//     incrementally as more of the path is revealed.
//
// Trail wires the three together for a single timeline.
//
// # Quick Start
//
//	anchors := []trail.Point{{X: 100, Y: 100}, {X: 300, Y: 400}, {X: 500, Y: 700}}
//
//	tr := trail.NewTrail(
//	    trail.WithGenerator(trail.WithSeed(42), trail.WithWaviness(0.8)),
//	    trail.WithViewport(trail.ViewportFor(1280)),
//	)
//	tr.SetAnchors(anchors)
//
//	fmt.Println(tr.PathData()) // M x y C ...
//
//	tr.Reveal(1)
//	for _, f := range tr.Footsteps() {
//	    fmt.Println(f.Side, f.X, f.Y, f.Angle)
//	}
//
// # Path format
//
// Path.String writes SVG path data using absolute commands only:
//
//	M x0 y0 C c1x c1y, c2x c2y, x1 y1 C ...
//
// ParsePath reads it back. Numbers use the shortest representation that
// round-trips, so a parsed path serializes to the same string.
//
// # Streaming
//
// Stream keeps an append-only footprint sequence. Extend requests a new
// revealed distance; requests arriving within the debounce window coalesce
// and the work runs on the next Tick after the window, or on Flush.
// Footprint IDs never change once assigned, which makes them usable as
// animation keys. The library starts no goroutines; the host drives Tick.
//
// # Logging
//
// trail is silent by default. Use SetLogger to route its diagnostics to a
// slog.Logger.
package trail
