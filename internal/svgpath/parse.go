// Package svgpath reads SVG documents and path data.
//
// Path data is normalized into absolute MoveTo, LineTo, CubicTo and ClosePath
// commands: horizontal and vertical lines become lines, quadratic Béziers are
// degree-elevated to cubics, smooth curves get their reflected control points
// made explicit, and elliptical arcs are approximated by cubics.
package svgpath

import (
	"fmt"
	"strconv"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

// ParseError reports a syntax error in path data.
type ParseError struct {
	Offset int // byte offset into the path data
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("svgpath: offset %d: %s", e.Offset, e.Msg)
}

// parser holds the pen state while walking path data.
type parser struct {
	data string
	pos  int

	cmds    []path.Command
	cur     geom.Point // current pen position
	start   geom.Point // start of the current subpath
	ctrl    geom.Point // last cubic (or quadratic) control point, for S and T
	prev    byte       // previous command letter, upper-cased
	started bool       // a MoveTo has been emitted
	done    bool       // the first subpath is complete
}

// Parse normalizes SVG path data. Only the first subpath is returned: the
// parser stops at the first MoveTo that follows drawing commands.
func Parse(d string) ([]path.Command, error) {
	p := &parser{data: d}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.cmds, nil
}

func (p *parser) run() error {
	var cmd byte
	for !p.done {
		p.skipSeparators()
		if p.pos >= len(p.data) {
			return nil
		}
		c := p.data[p.pos]
		switch {
		case isCommand(c):
			cmd = c
			p.pos++
		case cmd == 0:
			return p.errorf("expected command, got %q", c)
		case cmd == 'Z' || cmd == 'z':
			return p.errorf("unexpected %q after closepath", c)
		}
		if !p.started && cmd != 'M' && cmd != 'm' {
			return p.errorf("path data must begin with a moveto, got %q", cmd)
		}
		if err := p.command(cmd); err != nil {
			return err
		}
		// Coordinates following a moveto are implicit linetos.
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
	}
	return nil
}

func (p *parser) command(c byte) error {
	rel := c >= 'a' && c <= 'z'
	upper := c &^ 0x20
	var off geom.Point
	if rel {
		off = p.cur
	}

	switch upper {
	case 'M':
		if p.started && p.prev != 'M' {
			// A second subpath; everything we need has been emitted.
			p.done = true
			return nil
		}
		pt, err := p.point(off)
		if err != nil {
			return err
		}
		if p.started {
			// Consecutive movetos: the last one wins.
			p.cmds[len(p.cmds)-1] = path.MoveTo(pt)
		} else {
			p.cmds = append(p.cmds, path.MoveTo(pt))
			p.started = true
		}
		p.cur, p.start = pt, pt

	case 'Z':
		p.cmds = append(p.cmds, path.ClosePath())
		p.cur = p.start
		p.done = true

	case 'L':
		pt, err := p.point(off)
		if err != nil {
			return err
		}
		p.lineTo(pt)

	case 'H':
		x, err := p.number()
		if err != nil {
			return err
		}
		p.lineTo(geom.MakePoint(x+off.X, p.cur.Y))

	case 'V':
		y, err := p.number()
		if err != nil {
			return err
		}
		p.lineTo(geom.MakePoint(p.cur.X, y+off.Y))

	case 'C':
		c1, err := p.point(off)
		if err != nil {
			return err
		}
		c2, err := p.point(off)
		if err != nil {
			return err
		}
		end, err := p.point(off)
		if err != nil {
			return err
		}
		p.cubicTo(c1, c2, end)

	case 'S':
		c1 := p.cur
		if p.prev == 'C' || p.prev == 'S' {
			c1 = reflect(p.ctrl, p.cur)
		}
		c2, err := p.point(off)
		if err != nil {
			return err
		}
		end, err := p.point(off)
		if err != nil {
			return err
		}
		p.cubicTo(c1, c2, end)

	case 'Q':
		q, err := p.point(off)
		if err != nil {
			return err
		}
		end, err := p.point(off)
		if err != nil {
			return err
		}
		p.quadTo(q, end)

	case 'T':
		q := p.cur
		if p.prev == 'Q' || p.prev == 'T' {
			q = reflect(p.ctrl, p.cur)
		}
		end, err := p.point(off)
		if err != nil {
			return err
		}
		p.quadTo(q, end)

	case 'A':
		rx, err := p.number()
		if err != nil {
			return err
		}
		ry, err := p.number()
		if err != nil {
			return err
		}
		rot, err := p.number()
		if err != nil {
			return err
		}
		large, err := p.flag()
		if err != nil {
			return err
		}
		sweep, err := p.flag()
		if err != nil {
			return err
		}
		end, err := p.point(off)
		if err != nil {
			return err
		}
		p.arcTo(geom.MakePoint(rx, ry), rot, large, sweep, end)
	}

	p.prev = upper
	return nil
}

func (p *parser) lineTo(pt geom.Point) {
	p.cmds = append(p.cmds, path.LineTo(pt))
	p.cur = pt
}

func (p *parser) cubicTo(c1, c2, end geom.Point) {
	p.cmds = append(p.cmds, path.CubicTo(c1, c2, end))
	p.ctrl = c2
	p.cur = end
}

// quadTo elevates the quadratic Bézier (cur, q, end) to a cubic.
func (p *parser) quadTo(q, end geom.Point) {
	c1 := p.cur.Add(q.Sub(p.cur).Scale(2.0 / 3.0))
	c2 := end.Add(q.Sub(end).Scale(2.0 / 3.0))
	p.cmds = append(p.cmds, path.CubicTo(c1, c2, end))
	p.ctrl = q
	p.cur = end
}

func (p *parser) arcTo(radii geom.Point, rotation float64, large, sweep bool, end geom.Point) {
	pts := arcToCubics(p.cur, end, radii, rotation, large, sweep)
	if pts == nil {
		// Degenerate arcs are drawn as straight lines (SVG 1.1 F.6.2).
		if end != p.cur {
			p.lineTo(end)
		}
		return
	}
	for i := 0; i+2 < len(pts); i += 3 {
		p.cmds = append(p.cmds, path.CubicTo(pts[i], pts[i+1], pts[i+2]))
	}
	p.cur = end
}

// reflect returns the reflection of ctrl about pivot.
func reflect(ctrl, pivot geom.Point) geom.Point {
	return pivot.Add(pivot.Sub(ctrl))
}

func (p *parser) point(off geom.Point) (geom.Point, error) {
	x, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.MakePoint(x+off.X, y+off.Y), nil
}

// number scans a number per the SVG path grammar, which allows forms like
// "1.5.5" (two numbers) and "-1-2".
func (p *parser) number() (float64, error) {
	p.skipSeparators()
	start := p.pos
	i := p.pos
	if i < len(p.data) && (p.data[i] == '+' || p.data[i] == '-') {
		i++
	}
	digits := 0
	for i < len(p.data) && isDigit(p.data[i]) {
		i++
		digits++
	}
	if i < len(p.data) && p.data[i] == '.' {
		i++
		for i < len(p.data) && isDigit(p.data[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		if i >= len(p.data) {
			return 0, p.errorf("unexpected end of path data, expected number")
		}
		return 0, p.errorf("expected number, got %q", p.data[start])
	}
	if i < len(p.data) && (p.data[i] == 'e' || p.data[i] == 'E') {
		j := i + 1
		if j < len(p.data) && (p.data[j] == '+' || p.data[j] == '-') {
			j++
		}
		if j < len(p.data) && isDigit(p.data[j]) {
			for j < len(p.data) && isDigit(p.data[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(p.data[start:i], 64)
	if err != nil {
		return 0, p.errorf("invalid number %q: %v", p.data[start:i], err)
	}
	p.pos = i
	return v, nil
}

// flag scans an arc flag, which is a single 0 or 1 and need not be separated
// from what follows.
func (p *parser) flag() (bool, error) {
	p.skipSeparators()
	if p.pos >= len(p.data) {
		return false, p.errorf("unexpected end of path data, expected flag")
	}
	switch p.data[p.pos] {
	case '0':
		p.pos++
		return false, nil
	case '1':
		p.pos++
		return true, nil
	default:
		return false, p.errorf("expected arc flag, got %q", p.data[p.pos])
	}
}

func (p *parser) skipSeparators() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'Z', 'z', 'L', 'l', 'H', 'h', 'V', 'v',
		'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a':
		return true
	}
	return false
}
