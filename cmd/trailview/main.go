// Command trailview animates a trail in the terminal.
//
// Right and left arrows reveal or hide anchors; footsteps stream in as the
// reveal advances. r reseeds the path, v cycles the viewport class and q
// quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/NehoraiHadad/trail"
	"github.com/NehoraiHadad/trail/internal/scene"
)

const (
	frameInterval = 16 * time.Millisecond
	sampleRate    = beep.SampleRate(44100)
)

var (
	styleBase   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	stylePath   = styleBase.Foreground(tcell.NewRGBColor(0x8a, 0x74, 0x56))
	styleLeft   = styleBase.Foreground(tcell.NewRGBColor(0xe0, 0xc0, 0x90))
	styleRight  = styleBase.Foreground(tcell.NewRGBColor(0xc0, 0x90, 0x60))
	styleAnchor = styleBase.Foreground(tcell.ColorSteelBlue).Bold(true)
	styleHidden = styleBase.Foreground(tcell.ColorDarkSlateGray)
	styleStatus = styleBase.Reverse(true)
)

type viewer struct {
	screen tcell.Screen
	scene  *scene.Scene
	trail  *trail.Trail
	reveal int
	seed   int64

	audio     bool
	lastSteps int
}

func main() {
	var (
		scenePath = flag.String("scene", "", "scene YAML file (default: built-in demo)")
		mute      = flag.Bool("mute", false, "disable the footstep tick")
		logPath   = flag.String("log", "", "write debug log to file")
		seed      = flag.Int64("seed", 0, "override the generator seed")
	)
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log: %v", err)
		}
		defer f.Close()
		trail.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	sc := scene.Demo()
	if *scenePath != "" {
		var err error
		if sc, err = scene.Load(*scenePath); err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
	}

	var seedOverride *int64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedOverride = seed
		}
	})

	v, err := newViewer(sc, seedOverride, !*mute)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	v.run()
}

func newViewer(sc *scene.Scene, seed *int64, sound bool) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(styleBase)
	screen.HideCursor()

	genOpts := sc.GeneratorOptions(seed)
	v := &viewer{
		screen: screen,
		scene:  sc,
		trail: trail.NewTrail(
			trail.WithGenerator(genOpts...),
			trail.WithViewport(sc.FootstepViewport()),
		),
		seed: trail.NewGenerator(genOpts...).Params().Seed,
	}
	v.trail.SetAnchors(sc.Points())
	v.trail.Reveal(0)

	if sound {
		// Non-fatal, the viewer runs without sound.
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
			trail.Logger().Warn("audio initialization failed", "err", err)
		} else {
			v.audio = true
		}
	}
	return v, nil
}

func (v *viewer) run() {
	defer v.close()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	v.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !v.handle(ev) {
				return
			}
			v.refresh()
		case <-ticker.C:
			if v.trail.Tick() {
				v.refresh()
			}
		}
	}
}

// close releases the current trail, which rebuild may have replaced, and
// restores the terminal.
func (v *viewer) close() {
	v.trail.Dispose()
	v.screen.Fini()
}

// handle applies one event and reports whether the viewer keeps running.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRight:
			if v.reveal < len(v.scene.Anchors)-1 {
				v.reveal++
				v.trail.Reveal(v.reveal)
			}
		case ev.Key() == tcell.KeyLeft:
			// The stream never retracts, so hiding anchors redraws the
			// remaining prefix from a snapshot.
			if v.reveal > 0 {
				v.reveal--
				v.rebuild()
			}
		case ev.Rune() == 'r':
			v.seed++
			p := v.trail.Params()
			p.Seed = v.seed
			v.trail.SetParams(p)
		case ev.Rune() == 'v':
			v.trail.SetViewport((v.trail.Viewport() + 1) % 3)
		}
	}
	return true
}

// rebuild replaces the trail with one revealed up to v.reveal.
func (v *viewer) rebuild() {
	p, vp := v.trail.Params(), v.trail.Viewport()
	v.trail.Dispose()
	v.trail = trail.NewTrail(trail.WithViewport(vp))
	v.trail.SetParams(p)
	v.trail.SetAnchors(v.scene.Points())
	v.trail.Reveal(v.reveal)
	v.lastSteps = len(v.trail.Footsteps())
}

// refresh clicks when footsteps were added since the last frame and
// redraws.
func (v *viewer) refresh() {
	if n := len(v.trail.Footsteps()); n != v.lastSteps {
		if n > v.lastSteps {
			v.tick()
		}
		v.lastSteps = n
	}
	v.draw()
}

// tick plays a short click for a new batch of footsteps.
func (v *viewer) tick() {
	if !v.audio {
		return
	}
	sine, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		return
	}
	click := &effects.Volume{Streamer: beep.Take(sampleRate.N(25*time.Millisecond), sine), Base: 2, Volume: -3}
	speaker.Play(click)
}

// project maps scene coordinates to terminal cells.
func (v *viewer) project(x, y float64) (int, int) {
	w, h := v.screen.Size()
	h-- // status line
	sx := float64(w) / float64(v.scene.Width)
	sy := float64(h) / float64(v.scene.Height)
	return int(math.Round(x * sx)), int(math.Round(y * sy))
}

func (v *viewer) draw() {
	s := v.screen
	s.Clear()

	table := v.trail.Samples()
	for _, smp := range table.Samples {
		cx, cy := v.project(smp.X, smp.Y)
		s.SetContent(cx, cy, '·', nil, stylePath)
	}

	for _, f := range v.trail.Footsteps() {
		cx, cy := v.project(f.X, f.Y)
		style, r := styleLeft, footRune(f.Angle)
		if f.Side == trail.Right {
			style = styleRight
		}
		s.SetContent(cx, cy, r, nil, style)
	}

	for i, a := range v.scene.Anchors {
		cx, cy := v.project(a.X, a.Y)
		style := styleHidden
		if i <= v.reveal {
			style = styleAnchor
		}
		s.SetContent(cx, cy, '●', nil, style)
		drawText(s, cx+2, cy, style, a.Label)
	}

	w, h := s.Size()
	status := fmt.Sprintf(" anchor %d/%d  steps %d  %s  %s  seed %d  ←/→ reveal  r reseed  v viewport  q quit",
		v.reveal+1, len(v.scene.Anchors), len(v.trail.Footsteps()),
		v.trail.StreamState(), v.trail.Viewport(), v.seed)
	for x := 0; x < w; x++ {
		s.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	drawText(s, 0, h-1, styleStatus, status)
	s.Show()
}

// footRune picks an arrow for a rendering angle (0 = up, clockwise).
func footRune(angle float64) rune {
	arrows := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return arrows[int(math.Round(a/45))%len(arrows)]
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
