package video

import (
	"fmt"
	"image"

	vidio "github.com/AlexEidt/Vidio"
)

// FrameWriter accepts composed frames in order.
type FrameWriter interface {
	Write(img *image.RGBA) error
	Close() error
}

// Writer encodes RGBA frames to a video file through ffmpeg.
type Writer struct {
	w             *vidio.VideoWriter
	width, height int
	packed        []byte
}

func NewWriter(path string, width, height int, fps, quality float64) (*Writer, error) {
	options := vidio.Options{
		FPS:     fps,
		Quality: quality,
	}
	w, err := vidio.NewVideoWriter(path, width, height, &options)
	if err != nil {
		return nil, fmt.Errorf("failed to create video writer %s: %w", path, err)
	}
	return &Writer{w: w, width: width, height: height}, nil
}

func (w *Writer) Write(img *image.RGBA) error {
	buf, err := packRGBA(img, w.width, w.height, w.packed)
	if err != nil {
		return err
	}
	w.packed = buf
	return w.w.Write(buf)
}

func (w *Writer) Close() error {
	w.w.Close()
	return nil
}

// packRGBA returns the pixels of img as a tightly packed w*h*4 buffer,
// reusing scratch when the image has padding.
func packRGBA(img *image.RGBA, w, h int, scratch []byte) ([]byte, error) {
	if img.Rect.Dx() != w || img.Rect.Dy() != h {
		return scratch, fmt.Errorf("frame is %dx%d, writer expects %dx%d", img.Rect.Dx(), img.Rect.Dy(), w, h)
	}
	row := w * 4
	if img.Stride == row {
		start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
		return img.Pix[start : start+row*h], nil
	}
	if cap(scratch) < row*h {
		scratch = make([]byte, row*h)
	}
	scratch = scratch[:row*h]
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(scratch[y*row:(y+1)*row], img.Pix[off:off+row])
	}
	return scratch, nil
}
