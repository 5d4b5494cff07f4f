package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
)

// Canvas is a raster Surface backed by an RGBA image. Clips are kept as
// alpha coverage masks limited to the path bounds, so clipping to many
// small shapes stays cheap on a large canvas.
type Canvas struct {
	img *image.RGBA

	clip  *clipMask
	stack []*clipMask

	raster *vector.Rasterizer
	scaler xdraw.Interpolator
	scaled *image.RGBA
	masks  []*image.Alpha
}

type clipMask struct {
	alpha  *image.Alpha
	bounds image.Rectangle
	slot   int
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		raster: vector.NewRasterizer(0, 0),
		scaler: xdraw.ApproxBiLinear,
	}
}

// SetInterpolator swaps the scaler used for resized blits.
func (c *Canvas) SetInterpolator(i xdraw.Interpolator) {
	c.scaler = i
}

// Resize reallocates the pixel buffer when the size changes. Content is not
// preserved and any clip state is dropped.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if c.img.Rect.Dx() == w && c.img.Rect.Dy() == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.clip = nil
	c.stack = c.stack[:0]
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	return c.img.Rect.Dx(), c.img.Rect.Dy()
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.clip)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.clip = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) FillRect(r Rect, col color.Color) {
	dr := pixelRect(r).Intersect(c.img.Rect)
	src := image.NewUniform(col)
	if c.clip == nil {
		draw.Draw(c.img, dr, src, image.Point{}, draw.Src)
		return
	}
	dr = dr.Intersect(c.clip.bounds)
	if dr.Empty() {
		return
	}
	draw.DrawMask(c.img, dr, src, image.Point{}, c.clip.alpha, dr.Min, draw.Over)
}

func (c *Canvas) DrawImage(src image.Image, dst Rect) {
	dr := pixelRect(dst)
	sb := src.Bounds()
	if dr.Empty() || sb.Empty() {
		return
	}
	visible := dr.Intersect(c.img.Rect)
	if c.clip != nil {
		visible = visible.Intersect(c.clip.bounds)
	}
	if visible.Empty() {
		return
	}

	if dr.Size() != sb.Size() {
		if c.clip == nil {
			c.scaler.Scale(c.img, dr, src, sb, draw.Over, nil)
			return
		}
		// Scale into a scratch buffer first so the clip applies to the
		// final pixels.
		c.scaled = ensureRGBA(c.scaled, dr.Size())
		c.scaler.Scale(c.scaled, c.scaled.Rect, src, sb, draw.Src, nil)
		src, sb = c.scaled, c.scaled.Rect
	}

	r := visible
	sp := sb.Min.Add(r.Min.Sub(dr.Min))
	if c.clip == nil {
		draw.Draw(c.img, r, src, sp, draw.Over)
		return
	}
	draw.DrawMask(c.img, r, src, sp, c.clip.alpha, r.Min, draw.Over)
}

// Clip intersects the current clip with the inside of p.
func (c *Canvas) Clip(p shape.Path) {
	flat := p.Flatten()
	lo, hi := flat.Bounds()
	r := image.Rect(
		int(math.Floor(lo.X)), int(math.Floor(lo.Y)),
		int(math.Ceil(hi.X)), int(math.Ceil(hi.Y)),
	).Intersect(c.img.Rect)
	if c.clip != nil {
		r = r.Intersect(c.clip.bounds)
	}
	if r.Empty() {
		c.clip = &clipMask{slot: -1}
		return
	}

	// Two buffers per save depth: a clip layered on another clip at the
	// same depth must not overwrite its parent.
	slot := 2 * len(c.stack)
	if c.clip != nil && c.clip.alpha != nil && c.clip.slot == slot {
		slot++
	}
	alpha := c.maskBuffer(slot, r)

	c.raster.Reset(r.Dx(), r.Dy())
	c.raster.DrawOp = draw.Src
	off := shape.Point{X: float64(r.Min.X), Y: float64(r.Min.Y)}
	for _, s := range flat.Segments {
		switch s.Op {
		case shape.OpMoveTo:
			pt := s.Points[0].Sub(off)
			c.raster.MoveTo(float32(pt.X), float32(pt.Y))
		case shape.OpLineTo:
			pt := s.Points[0].Sub(off)
			c.raster.LineTo(float32(pt.X), float32(pt.Y))
		case shape.OpCubeTo:
			c1 := s.Points[0].Sub(off)
			c2 := s.Points[1].Sub(off)
			end := s.Points[2].Sub(off)
			c.raster.CubeTo(
				float32(c1.X), float32(c1.Y),
				float32(c2.X), float32(c2.Y),
				float32(end.X), float32(end.Y),
			)
		case shape.OpClose:
			c.raster.ClosePath()
		}
	}
	c.raster.Draw(alpha, r, image.Opaque, image.Point{})

	if parent := c.clip; parent != nil {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := alpha.Pix[alpha.PixOffset(r.Min.X, y):]
			prow := parent.alpha.Pix[parent.alpha.PixOffset(r.Min.X, y):]
			for x := 0; x < r.Dx(); x++ {
				row[x] = uint8(uint32(row[x]) * uint32(prow[x]) / 0xff)
			}
		}
	}
	c.clip = &clipMask{alpha: alpha, bounds: r, slot: slot}
}

// maskBuffer returns the reusable alpha mask for slot, sized and positioned
// at r.
func (c *Canvas) maskBuffer(slot int, r image.Rectangle) *image.Alpha {
	for len(c.masks) <= slot {
		c.masks = append(c.masks, nil)
	}
	m := c.masks[slot]
	n := r.Dx() * r.Dy()
	if m == nil || cap(m.Pix) < n {
		m = &image.Alpha{Pix: make([]uint8, n)}
		c.masks[slot] = m
	}
	m.Pix = m.Pix[:n]
	m.Stride = r.Dx()
	m.Rect = r
	return m
}

func ensureRGBA(img *image.RGBA, size image.Point) *image.RGBA {
	n := size.X * size.Y * 4
	if img == nil || cap(img.Pix) < n {
		return image.NewRGBA(image.Rectangle{Max: size})
	}
	img.Pix = img.Pix[:n]
	img.Stride = size.X * 4
	img.Rect = image.Rectangle{Max: size}
	return img
}

func pixelRect(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)),
		int(math.Round(r.Y+r.H)),
	)
}
