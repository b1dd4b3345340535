// Command trailpng renders a trail scene to a PNG image.
//
// Without -scene it renders the built-in demo timeline.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/NehoraiHadad/trail"
	"github.com/NehoraiHadad/trail/internal/render"
	"github.com/NehoraiHadad/trail/internal/scene"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene YAML file (default: built-in demo)")
		output    = flag.String("out", "trail.png", "output file")
		width     = flag.Int("width", 0, "override canvas width")
		height    = flag.Int("height", 0, "override canvas height")
		reveal    = flag.Int("reveal", -2, "revealed anchor index (default: from scene)")
		seed      = flag.Int64("seed", 0, "override the generator seed")
		fontPath  = flag.String("font", "", "TrueType font for labels")
		stream    = flag.Bool("stream", false, "place footsteps through the streaming path")
		verbose   = flag.Bool("verbose", false, "log debug output")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	trail.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	sc := scene.Demo()
	if *scenePath != "" {
		var err error
		if sc, err = scene.Load(*scenePath); err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
	}
	if *width > 0 {
		sc.Width = *width
	}
	if *height > 0 {
		sc.Height = *height
	}

	var seedOverride *int64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedOverride = seed
		}
	})
	index := sc.RevealIndex()
	if *reveal > -2 {
		index = *reveal
	}

	tr := trail.NewTrail(
		trail.WithGenerator(sc.GeneratorOptions(seedOverride)...),
		trail.WithViewport(sc.FootstepViewport()),
	)
	defer tr.Dispose()
	tr.SetAnchors(sc.Points())

	var steps []trail.Footstep
	if *stream {
		tr.Reveal(index)
		steps = tr.Footsteps()
	} else {
		steps = tr.Snapshot(index)
	}

	opts := render.DefaultOptions(sc.Width, sc.Height)
	if *fontPath != "" {
		data, err := os.ReadFile(*fontPath)
		if err != nil {
			log.Fatalf("Failed to read font: %v", err)
		}
		opts.FontData = data
	}
	r, err := render.NewRenderer(opts)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	markers := make([]render.Marker, len(sc.Anchors))
	for i, a := range sc.Anchors {
		markers[i] = render.Marker{X: a.X, Y: a.Y, Label: a.Label}
	}
	img := r.Render(render.Frame{Path: tr.Path(), Footsteps: steps, Markers: markers})

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := render.EncodePNG(f, img); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Trail saved to %s (%dx%d, %d footsteps, length %.0f)\n",
		*output, sc.Width, sc.Height, len(steps), tr.TotalLength())
}
