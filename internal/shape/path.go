package shape

import "math"

// Point is a position in surface coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Op is a path construction operation.
type Op uint8

const (
	OpMoveTo Op = iota
	OpLineTo
	OpCubeTo
	OpArc
	OpClose
)

// Segment is one path operation. MoveTo and LineTo use Points[0],
// CubeTo uses all three points (two controls, then the end point).
// Arc uses Center, Radius, Start and End (radians, clockwise on screen).
type Segment struct {
	Op     Op
	Points [3]Point

	Center     Point
	Radius     float64
	Start, End float64
}

// Path is an immutable-by-convention list of segments describing one or
// more closed outlines.
type Path struct {
	Segments []Segment
}

func (p *Path) MoveTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Op: OpMoveTo, Points: [3]Point{pt}})
}

func (p *Path) LineTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Op: OpLineTo, Points: [3]Point{pt}})
}

func (p *Path) CubeTo(c1, c2, end Point) {
	p.Segments = append(p.Segments, Segment{Op: OpCubeTo, Points: [3]Point{c1, c2, end}})
}

func (p *Path) Arc(center Point, radius, start, end float64) {
	p.Segments = append(p.Segments, Segment{
		Op:     OpArc,
		Center: center,
		Radius: radius,
		Start:  start,
		End:    end,
	})
}

func (p *Path) Close() {
	p.Segments = append(p.Segments, Segment{Op: OpClose})
}

// Vertices returns the on-curve end points of MoveTo, LineTo and CubeTo
// segments in order. Arcs and control points are not included.
func (p Path) Vertices() []Point {
	var out []Point
	for _, s := range p.Segments {
		switch s.Op {
		case OpMoveTo, OpLineTo:
			out = append(out, s.Points[0])
		case OpCubeTo:
			out = append(out, s.Points[2])
		}
	}
	return out
}

// Bounds returns the axis-aligned box containing every point of the path
// including control points, so it may be larger than the drawn outline.
func (p Path) Bounds() (lo, hi Point) {
	first := true
	grow := func(pt Point) {
		if first {
			lo, hi = pt, pt
			first = false
			return
		}
		lo.X = math.Min(lo.X, pt.X)
		lo.Y = math.Min(lo.Y, pt.Y)
		hi.X = math.Max(hi.X, pt.X)
		hi.Y = math.Max(hi.Y, pt.Y)
	}
	for _, s := range p.Segments {
		switch s.Op {
		case OpMoveTo, OpLineTo:
			grow(s.Points[0])
		case OpCubeTo:
			for _, pt := range s.Points {
				grow(pt)
			}
		case OpArc:
			grow(Point{s.Center.X - s.Radius, s.Center.Y - s.Radius})
			grow(Point{s.Center.X + s.Radius, s.Center.Y + s.Radius})
		}
	}
	return lo, hi
}

// Flatten rewrites arcs as cubic Bézier segments so rasterizers that only
// understand lines and cubics can consume the path.
func (p Path) Flatten() Path {
	var out Path
	for _, s := range p.Segments {
		if s.Op != OpArc {
			out.Segments = append(out.Segments, s)
			continue
		}
		out.appendArc(s.Center, s.Radius, s.Start, s.End)
	}
	return out
}

func (p *Path) appendArc(c Point, r, start, end float64) {
	sweep := end - start
	if sweep == 0 || r <= 0 {
		return
	}
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	// Control distance for a cubic approximating an arc of angle step.
	k := 4.0 / 3.0 * math.Tan(step/4)

	at := func(a float64) Point {
		return Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	a0 := start
	p0 := at(a0)
	if len(p.Segments) == 0 || p.Segments[len(p.Segments)-1].Op == OpClose {
		p.MoveTo(p0)
	} else {
		p.LineTo(p0)
	}
	for i := 0; i < n; i++ {
		a1 := a0 + step
		p1 := at(a1)
		c1 := Point{p0.X - k*r*math.Sin(a0), p0.Y + k*r*math.Cos(a0)}
		c2 := Point{p1.X + k*r*math.Sin(a1), p1.Y - k*r*math.Cos(a1)}
		p.CubeTo(c1, c2, p1)
		a0, p0 = a1, p1
	}
}
