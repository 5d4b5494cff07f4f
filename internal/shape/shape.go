package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind selects the outline used for a reveal mask.
type Kind uint8

const (
	Circle Kind = iota
	Square
	Triangle
	Star
	Heart
)

// Kinds lists every shape in selector order.
var Kinds = [...]Kind{Circle, Square, Triangle, Star, Heart}

var ErrUnknownShape = errors.New("unknown shape")

var kindNames = [...]string{"circle", "square", "triangle", "star", "heart"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a selector name to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Circle, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Build returns the closed outline for kind centered at c.
// It is pure: equal inputs always produce equal paths.
func Build(c Point, radius float64, kind Kind) Path {
	switch kind {
	case Square:
		return square(c, radius)
	case Triangle:
		return triangle(c, radius)
	case Star:
		return star(c, radius)
	case Heart:
		return heart(c, radius)
	default:
		return circle(c, radius)
	}
}

func circle(c Point, r float64) Path {
	var p Path
	p.Arc(c, r, 0, 2*math.Pi)
	p.Close()
	return p
}

func square(c Point, r float64) Path {
	half := r * 1.5 / 2
	var p Path
	p.MoveTo(Point{c.X - half, c.Y - half})
	p.LineTo(Point{c.X + half, c.Y - half})
	p.LineTo(Point{c.X + half, c.Y + half})
	p.LineTo(Point{c.X - half, c.Y + half})
	p.Close()
	return p
}

func triangle(c Point, r float64) Path {
	size := r * 1.8
	var p Path
	p.MoveTo(Point{c.X, c.Y - size*0.7})
	p.LineTo(Point{c.X - size*0.6, c.Y + size*0.35})
	p.LineTo(Point{c.X + size*0.6, c.Y + size*0.35})
	p.Close()
	return p
}

const starPoints = 5

func star(c Point, r float64) Path {
	outer := r * 1.5
	inner := r * 0.6
	step := math.Pi / starPoints
	angle := 3 * math.Pi / 2

	var p Path
	for i := 0; i < starPoints*2; i++ {
		rad := outer
		if i%2 == 1 {
			rad = inner
		}
		v := Point{c.X + math.Cos(angle)*rad, c.Y + math.Sin(angle)*rad}
		if i == 0 {
			p.MoveTo(v)
		} else {
			p.LineTo(v)
		}
		angle += step
	}
	p.Close()
	return p
}

// heart traces the left lobe down to the cusp and mirrors it back up.
// The coefficients are relative to size and must stay exactly as written.
func heart(c Point, r float64) Path {
	size := r * 1.4
	top := c.Y - size*0.2
	x := c.X

	var p Path
	p.MoveTo(Point{x, top + size*0.3})
	p.CubeTo(
		Point{x, top},
		Point{x - size*0.5, top},
		Point{x - size*0.5, top + size*0.3},
	)
	p.CubeTo(
		Point{x - size*0.5, top + size*0.6},
		Point{x, top + size*0.9},
		Point{x, top + size*0.95},
	)
	p.CubeTo(
		Point{x, top + size*0.9},
		Point{x + size*0.5, top + size*0.6},
		Point{x + size*0.5, top + size*0.3},
	)
	p.CubeTo(
		Point{x + size*0.5, top},
		Point{x, top},
		Point{x, top + size*0.3},
	)
	p.Close()
	return p
}
