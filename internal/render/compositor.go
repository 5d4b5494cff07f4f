package render

import (
	"image"
	"image/color"

	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
	"github.com/vedantwpatil/cursor-reveal/internal/trail"
)

// VideoSource is the frame provider the compositor samples once per frame.
// Ready reports whether a frame can be presented now; it must not block.
type VideoSource interface {
	Ready() bool
	Dimensions() (w, h int, ok bool)
	Frame() image.Image
}

// PointerSource exposes the live pointer state.
type PointerSource interface {
	State() tracking.PointerState
}

// FrameObserver receives per-frame counters. metrics.Frames implements it.
type FrameObserver interface {
	FrameRendered(mode string)
	FrameSkipped(mode string)
	TrailSize(n int)
	MasksPruned(n int)
}

type Options struct {
	Background color.Color
	// DecayInFullVideo keeps the trail fading while the mask is off.
	DecayInFullVideo bool
}

// Compositor draws one frame per Render call: either the plain video or the
// video revealed through the trail and the live pointer mask.
type Compositor struct {
	surface Surface
	video   VideoSource
	pointer PointerSource
	trail   *trail.Store
	modes   *Modes
	opts    Options

	offscreen *Canvas
	observer  FrameObserver
	logger    *zap.Logger
	hadVideo  bool
}

func NewCompositor(surface Surface, video VideoSource, pointer PointerSource,
	store *trail.Store, modes *Modes, opts Options, logger *zap.Logger,
) *Compositor {
	if opts.Background == nil {
		opts.Background = color.White
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{
		surface:   surface,
		video:     video,
		pointer:   pointer,
		trail:     store,
		modes:     modes,
		opts:      opts,
		offscreen: NewCanvas(0, 0),
		logger:    logger,
	}
}

// SetObserver attaches frame counters. nil detaches them.
func (c *Compositor) SetObserver(o FrameObserver) {
	c.observer = o
}

// Render composes a single frame and returns the mode it was drawn in.
// A video that is not ready yet is skipped for this frame only.
func (c *Compositor) Render() Mode {
	mode := c.modes.Mode()
	w, h := c.surface.Size()

	frame, fit, ok := c.sample(w, h)
	if !ok {
		c.skipped(mode)
	}

	switch mode {
	case ModeFullVideo:
		c.surface.FillRect(Rect{W: float64(w), H: float64(h)}, c.opts.Background)
		if ok {
			c.surface.DrawImage(frame, fit)
		}
		if c.opts.DecayInFullVideo {
			c.decay()
		}
	default:
		c.renderMasked(frame, fit, ok, w, h)
		c.decay()
	}

	if c.observer != nil {
		c.observer.FrameRendered(mode.String())
		c.observer.TrailSize(c.trail.Len())
	}
	return mode
}

func (c *Compositor) renderMasked(frame image.Image, fit Rect, ok bool, w, h int) {
	full := Rect{W: float64(w), H: float64(h)}
	c.surface.FillRect(full, c.opts.Background)
	if !ok {
		return
	}

	// Decode and scale once, then stamp the buffer through every mask.
	c.offscreen.Resize(w, h)
	c.offscreen.FillRect(full, c.opts.Background)
	c.offscreen.DrawImage(frame, fit)
	buf := c.offscreen.Image()

	c.trail.Each(func(m trail.Mask) {
		c.reveal(buf, full, shape.Build(m.Position, m.Radius*m.Opacity, m.Shape))
	})

	if st := c.pointer.State(); st.Valid {
		c.reveal(buf, full, shape.Build(st.Position, st.Radius, c.modes.Shape()))
	}
}

func (c *Compositor) reveal(buf image.Image, full Rect, p shape.Path) {
	c.surface.Save()
	defer c.surface.Restore()
	c.surface.Clip(p)
	c.surface.DrawImage(buf, full)
}

// sample returns the current video frame and its placement, or ok=false
// when the source cannot present a frame yet.
func (c *Compositor) sample(w, h int) (image.Image, Rect, bool) {
	if c.video == nil || w <= 0 || h <= 0 || !c.video.Ready() {
		return nil, Rect{}, false
	}
	vw, vh, ok := c.video.Dimensions()
	if !ok || vw <= 0 || vh <= 0 {
		return nil, Rect{}, false
	}
	frame := c.video.Frame()
	if frame == nil {
		return nil, Rect{}, false
	}
	if !c.hadVideo {
		c.hadVideo = true
		c.logger.Debug("first video frame presented",
			zap.Int("video_width", vw),
			zap.Int("video_height", vh),
			zap.Int("surface_width", w),
			zap.Int("surface_height", h))
	}
	return frame, Fit(vw, vh, w, h), true
}

func (c *Compositor) decay() {
	if n := c.trail.DecayAndPrune(); n > 0 && c.observer != nil {
		c.observer.MasksPruned(n)
	}
}

func (c *Compositor) skipped(mode Mode) {
	if c.observer != nil {
		c.observer.FrameSkipped(mode.String())
	}
}
