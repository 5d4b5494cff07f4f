package render

import (
	"image"
	"image/color"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
)

// Rect is a destination rectangle in surface coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Surface is the 2D drawing context the compositor renders into.
// Clip narrows the drawable area to the inside of a path until the matching
// Restore. DrawImage scales the whole of src into dst.
type Surface interface {
	Size() (w, h int)
	FillRect(r Rect, c color.Color)
	DrawImage(src image.Image, dst Rect)
	Clip(p shape.Path)
	Save()
	Restore()
}

// Fit computes the contain-and-crop placement of a video inside a canvas:
// the video covers the canvas, keeps its aspect ratio and is centered, with
// the overflowing dimension cropped.
func Fit(videoW, videoH, canvasW, canvasH int) Rect {
	if videoW <= 0 || videoH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Rect{}
	}
	vw, vh := float64(videoW), float64(videoH)
	cw, ch := float64(canvasW), float64(canvasH)
	videoAspect := vw / vh
	canvasAspect := cw / ch

	if videoAspect > canvasAspect {
		h := ch
		w := h * videoAspect
		return Rect{X: (cw - w) / 2, Y: 0, W: w, H: h}
	}
	w := cw
	h := w / videoAspect
	return Rect{X: 0, Y: (ch - h) / 2, W: w, H: h}
}
