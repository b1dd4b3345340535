package trail

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePath reads the SVG path data subset written by Path.String:
// absolute M, L and C commands with implicit command repetition.
// Blank input yields a nil path and no error.
func ParsePath(s string) (*Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	sc := pathScanner{src: s}
	p := NewPath()
	var cmd byte
	for {
		sc.skipSeparators()
		if sc.done() {
			break
		}

		if c := sc.peek(); isCommand(c) {
			cmd = c
			sc.pos++
		} else if cmd == 0 {
			return nil, sc.errorf("expected command, found %q", c)
		}

		switch cmd {
		case 'M':
			pt, err := sc.point()
			if err != nil {
				return nil, err
			}
			if p.started {
				return nil, sc.errorf("multiple subpaths are not supported")
			}
			p.MoveTo(pt.X, pt.Y)
			// Extra coordinate pairs after M are implicit line-tos.
			cmd = 'L'
		case 'L':
			if !p.started {
				return nil, sc.errorf("L before M")
			}
			pt, err := sc.point()
			if err != nil {
				return nil, err
			}
			p.LineTo(pt.X, pt.Y)
		case 'C':
			if !p.started {
				return nil, sc.errorf("C before M")
			}
			var pts [3]Point
			for i := range pts {
				pt, err := sc.point()
				if err != nil {
					return nil, err
				}
				pts[i] = pt
			}
			p.CubicTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		}
	}
	return p, nil
}

func isCommand(c byte) bool {
	return c == 'M' || c == 'L' || c == 'C'
}

type pathScanner struct {
	src string
	pos int
}

func (s *pathScanner) done() bool { return s.pos >= len(s.src) }
func (s *pathScanner) peek() byte { return s.src[s.pos] }

func (s *pathScanner) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *pathScanner) skipSeparators() {
	for !s.done() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *pathScanner) number() (float64, error) {
	s.skipSeparators()
	start := s.pos
	for !s.done() {
		c := s.peek()
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			s.pos++
			continue
		}
		break
	}
	if start == s.pos {
		if s.done() {
			return 0, s.errorf("unexpected end of input")
		}
		return 0, s.errorf("expected number, found %q", s.peek())
	}
	tok := s.src[start:s.pos]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || !isFinite(v) {
		s.pos = start
		return 0, s.errorf("malformed number %q", tok)
	}
	return v, nil
}

func (s *pathScanner) point() (Point, error) {
	x, err := s.number()
	if err != nil {
		return Point{}, err
	}
	y, err := s.number()
	if err != nil {
		return Point{}, err
	}
	return Pt(x, y), nil
}
