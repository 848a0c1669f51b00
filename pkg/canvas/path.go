package canvas

import (
	"math"
	"strconv"
	"strings"
)

// Point is a 2D coordinate in pixels.
type Point struct {
	X, Y float64
}

type pathOp int

const (
	opMove pathOp = iota
	opLine
	opQuad
	opClose
)

type pathCmd struct {
	op  pathOp
	pts [2]Point // opQuad: control, end; otherwise pts[0]
}

// Path accumulates path commands with canvas semantics: LineTo without a
// current point starts a subpath, arcs connect to the current point.
// Arcs are stored as quadratic segments of at most 45 degrees.
type Path struct {
	cmds   []pathCmd
	start  Point
	cur    Point
	hasCur bool
}

// Reset discards all commands.
func (p *Path) Reset() {
	p.cmds = p.cmds[:0]
	p.hasCur = false
}

// Empty reports whether the path has no drawable commands.
func (p *Path) Empty() bool {
	for _, c := range p.cmds {
		if c.op != opMove {
			return false
		}
	}
	return true
}

func (p *Path) MoveTo(x, y float64) {
	p.cmds = append(p.cmds, pathCmd{op: opMove, pts: [2]Point{{x, y}}})
	p.start = Point{x, y}
	p.cur = p.start
	p.hasCur = true
}

func (p *Path) LineTo(x, y float64) {
	if !p.hasCur {
		p.MoveTo(x, y)
		return
	}
	p.cmds = append(p.cmds, pathCmd{op: opLine, pts: [2]Point{{x, y}}})
	p.cur = Point{x, y}
}

func (p *Path) QuadTo(cx, cy, x, y float64) {
	if !p.hasCur {
		p.MoveTo(cx, cy)
	}
	p.cmds = append(p.cmds, pathCmd{op: opQuad, pts: [2]Point{{cx, cy}, {x, y}}})
	p.cur = Point{x, y}
}

// Arc appends a circular arc. A sweep of 2π or more draws a full circle.
func (p *Path) Arc(x, y, r, start, end float64, anticlockwise bool) {
	if r <= 0 {
		p.LineTo(x, y)
		return
	}

	sweep := end - start
	if anticlockwise {
		sweep = start - end
		if sweep < 0 {
			sweep = math.Mod(sweep, 2*math.Pi) + 2*math.Pi
		}
		sweep = -math.Min(sweep, 2*math.Pi)
	} else {
		if sweep < 0 {
			sweep = math.Mod(sweep, 2*math.Pi) + 2*math.Pi
		}
		sweep = math.Min(sweep, 2*math.Pi)
	}

	p.LineTo(x+r*math.Cos(start), y+r*math.Sin(start))

	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 4)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	ctrl := r / math.Cos(step/2)
	a := start
	for i := 0; i < n; i++ {
		mid := a + step/2
		a += step
		p.QuadTo(x+ctrl*math.Cos(mid), y+ctrl*math.Sin(mid), x+r*math.Cos(a), y+r*math.Sin(a))
	}
}

func (p *Path) Close() {
	if !p.hasCur {
		return
	}
	p.cmds = append(p.cmds, pathCmd{op: opClose})
	p.cur = p.start
}

// Subpath is a flattened polyline.
type Subpath struct {
	Points []Point
	Closed bool
}

// Flatten converts the path to polylines. Bounds and strokes work on the
// polylines; raster fills pass curves to the rasterizer unflattened.
func (p *Path) Flatten() []Subpath {
	var out []Subpath
	var cur *Subpath

	for _, c := range p.cmds {
		switch c.op {
		case opMove:
			out = append(out, Subpath{Points: []Point{c.pts[0]}})
			cur = &out[len(out)-1]
		case opLine:
			cur.Points = append(cur.Points, c.pts[0])
		case opQuad:
			from := cur.Points[len(cur.Points)-1]
			cur.Points = appendQuad(cur.Points, from, c.pts[0], c.pts[1])
		case opClose:
			cur.Closed = true
			// Drawing after a close continues from the subpath start.
			out = append(out, Subpath{Points: []Point{cur.Points[0]}})
			cur = &out[len(out)-1]
		}
	}

	kept := out[:0]
	for _, sp := range out {
		if len(sp.Points) > 1 {
			kept = append(kept, sp)
		}
	}
	return kept
}

func appendQuad(pts []Point, p0, c, p1 Point) []Point {
	l := math.Hypot(c.X-p0.X, c.Y-p0.Y) + math.Hypot(p1.X-c.X, p1.Y-c.Y)
	n := int(math.Max(4, math.Min(64, l/2)))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		pts = append(pts, Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
		})
	}
	return pts
}

// Bounds returns the bounding box of the flattened path.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for _, sp := range p.Flatten() {
		for _, pt := range sp.Points {
			if !ok {
				minX, minY, maxX, maxY = pt.X, pt.Y, pt.X, pt.Y
				ok = true
				continue
			}
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	return
}

// SVGData renders the path as an SVG path "d" attribute.
func (p *Path) SVGData() string {
	var sb strings.Builder
	for _, c := range p.cmds {
		switch c.op {
		case opMove:
			sb.WriteString("M" + num(c.pts[0].X) + " " + num(c.pts[0].Y))
		case opLine:
			sb.WriteString("L" + num(c.pts[0].X) + " " + num(c.pts[0].Y))
		case opQuad:
			sb.WriteString("Q" + num(c.pts[0].X) + " " + num(c.pts[0].Y) + " " +
				num(c.pts[1].X) + " " + num(c.pts[1].Y))
		case opClose:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
