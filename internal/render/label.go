package render

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// labelGap is the distance between a marker's edge and its label, in
// output pixels.
const labelGap = 10

// labeler draws marker labels. Glyphs are drawn with x/image/font;
// advances come from HarfBuzz shaping so right-aligned labels line up.
type labeler struct {
	face   font.Face
	shape  *gotext.Font
	size   float64
	shaper shaping.HarfbuzzShaper
}

func newLabeler(data []byte, size float64) (*labeler, error) {
	if data == nil {
		data = goregular.TTF
	}
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}
	face, err := opentype.NewFace(sf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: font face: %w", err)
	}
	shapeFace, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		_ = face.Close()
		return nil, fmt.Errorf("render: parse font for shaping: %w", err)
	}
	return &labeler{face: face, shape: shapeFace.Font, size: size}, nil
}

func (l *labeler) close() error {
	return l.face.Close()
}

// draw places m's label beside its marker: to the right for markers on
// the left half of the canvas, to the left otherwise.
func (l *labeler) draw(dst *image.RGBA, m Marker, scale float64, o Options) {
	text := visualOrder(m.Label)
	width := l.advance(m.Label)
	if width <= 0 {
		width = fixedToFloat(font.MeasureString(l.face, text))
	}

	gap := (o.MarkerRadius + labelGap) * scale
	x := m.X*scale + gap
	if m.X > float64(o.Width)/2 {
		x = m.X*scale - gap - width
	}
	y := m.Y*scale + l.size/3

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(o.Label),
		Face: l.face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(text)
}

// advance shapes the label and returns its width in pixels.
func (l *labeler) advance(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	dir, lang := di.DirectionLTR, language.NewLanguage("en")
	if isRTL(s) {
		dir, lang = di.DirectionRTL, language.NewLanguage("he")
	}
	out := l.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      gotext.NewFace(l.shape),
		Size:      floatToFixed(l.size),
		Script:    detectScript(runes),
		Language:  lang,
	})
	adv := fixedToFloat(out.Advance)
	if adv < 0 {
		adv = -adv
	}
	return adv
}

// visualOrder reorders s for left-to-right drawing: right-to-left runs are
// reversed in place. On a bidi failure s is returned unchanged.
func visualOrder(s string) string {
	if !isRTL(s) {
		return s
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return s
	}
	ord, err := p.Order()
	if err != nil {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < ord.NumRuns(); i++ {
		run := ord.Run(i)
		if run.Direction() == bidi.RightToLeft {
			b.WriteString(reverse(run.String()))
		} else {
			b.WriteString(run.String())
		}
	}
	return b.String()
}

// isRTL reports whether s contains Hebrew or Arabic letters.
func isRTL(s string) bool {
	for _, r := range s {
		if (r >= 0x0590 && r <= 0x08FF) || (r >= 0xFB1D && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF) {
			return true
		}
	}
	return false
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// detectScript returns the script of the first letter-like rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || (r >= '0' && r <= '9') {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
