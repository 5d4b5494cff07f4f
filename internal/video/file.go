package video

import (
	"context"
	"fmt"
	"image"
	"time"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// decoder is the subset of *vidio.Video the file reader uses.
type decoder interface {
	Read() bool
	FrameBuffer() []byte
	Width() int
	Height() int
	FPS() float64
	Close()
}

type openFunc func(path string) (decoder, error)

func openVidio(path string) (decoder, error) {
	v, err := vidio.NewVideo(path)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// File decodes a video file frame by frame and starts over from the first
// frame when it reaches the end. It is not safe for concurrent use; Player
// wraps it for live playback.
type File struct {
	path   string
	open   openFunc
	dec    decoder
	logger *zap.Logger

	width, height int
	fps           float64

	frame  *image.RGBA
	frames int
	loops  int
}

// Open probes the file and prepares it for decoding. No frame is decoded
// until the first call to Next.
func Open(path string, logger *zap.Logger) (*File, error) {
	return openFile(path, openVidio, logger)
}

func openFile(path string, open openFunc, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dec, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	w, h := dec.Width(), dec.Height()
	if w <= 0 || h <= 0 {
		dec.Close()
		return nil, fmt.Errorf("video %s has no usable dimensions (%dx%d)", path, w, h)
	}
	return &File{
		path:   path,
		open:   open,
		dec:    dec,
		logger: logger,
		width:  w,
		height: h,
		fps:    dec.FPS(),
		frame:  image.NewRGBA(image.Rect(0, 0, w, h)),
	}, nil
}

// OpenWithRetry keeps trying to open the file with exponential backoff until
// it succeeds, maxElapsed passes or ctx is cancelled.
func OpenWithRetry(ctx context.Context, path string, maxElapsed time.Duration, logger *zap.Logger) (*File, error) {
	return openWithRetry(ctx, path, openVidio, maxElapsed, logger)
}

func openWithRetry(ctx context.Context, path string, open openFunc, maxElapsed time.Duration, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	var f *File
	err := backoff.RetryNotify(func() error {
		var err error
		f, err = openFile(path, open, logger)
		return err
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Warn("video not ready, retrying",
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Next decodes the following frame, rewinding at the end of the file.
func (f *File) Next() error {
	if f.dec.Read() {
		f.store()
		return nil
	}

	// End of stream: reopen and read the first frame again.
	f.dec.Close()
	dec, err := f.open(f.path)
	if err != nil {
		return fmt.Errorf("failed to rewind video %s: %w", f.path, err)
	}
	f.dec = dec
	if !dec.Read() {
		return fmt.Errorf("video %s has no frames", f.path)
	}
	f.loops++
	f.logger.Debug("video looped", zap.String("path", f.path), zap.Int("loops", f.loops))
	f.store()
	return nil
}

func (f *File) store() {
	copy(f.frame.Pix, f.dec.FrameBuffer())
	f.frames++
}

func (f *File) Ready() bool { return f.frames > 0 }

func (f *File) Dimensions() (int, int, bool) { return f.width, f.height, true }

// Frame returns the most recently decoded frame. The image is reused by the
// next call to Next.
func (f *File) Frame() image.Image {
	if f.frames == 0 {
		return nil
	}
	return f.frame
}

// FPS reports the file's native frame rate, or 0 when unknown.
func (f *File) FPS() float64 { return f.fps }

// Loops reports how many times playback wrapped around.
func (f *File) Loops() int { return f.loops }

func (f *File) Close() {
	f.dec.Close()
}
