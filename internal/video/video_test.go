package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
)

type fakeDecoder struct {
	w, h   int
	frames int
	read   int
	buf    []byte
	closed bool
}

func (d *fakeDecoder) Read() bool {
	if d.read >= d.frames {
		return false
	}
	for i := range d.buf {
		d.buf[i] = byte(d.read + 1)
	}
	d.read++
	return true
}

func (d *fakeDecoder) FrameBuffer() []byte { return d.buf }
func (d *fakeDecoder) Width() int          { return d.w }
func (d *fakeDecoder) Height() int         { return d.h }
func (d *fakeDecoder) FPS() float64        { return 200 }
func (d *fakeDecoder) Close()              { d.closed = true }

type fakeOpener struct {
	w, h, frames int
	fails        int
	opens        int
}

func (o *fakeOpener) open(string) (decoder, error) {
	o.opens++
	if o.opens <= o.fails {
		return nil, errors.New("no such file yet")
	}
	return &fakeDecoder{w: o.w, h: o.h, frames: o.frames, buf: make([]byte, o.w*o.h*4)}, nil
}

func TestFileLoopsAtEnd(t *testing.T) {
	op := &fakeOpener{w: 4, h: 2, frames: 2}
	f, err := openFile("clip.mp4", op.open, nil)
	require.NoError(t, err)

	assert.False(t, f.Ready())
	assert.Nil(t, f.Frame())
	w, h, ok := f.Dimensions()
	assert.True(t, ok)
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	var firstBytes []byte
	for i := 0; i < 5; i++ {
		require.NoError(t, f.Next())
		firstBytes = append(firstBytes, f.Frame().(*image.RGBA).Pix[0])
	}
	assert.True(t, f.Ready())
	assert.Equal(t, []byte{1, 2, 1, 2, 1}, firstBytes)
	assert.Equal(t, 2, f.Loops())
	assert.Equal(t, 3, op.opens)
}

func TestOpenRejectsEmptyDimensions(t *testing.T) {
	op := &fakeOpener{w: 0, h: 0, frames: 1}
	_, err := openFile("clip.mp4", op.open, nil)
	assert.Error(t, err)
}

func TestOpenWithRetryEventuallySucceeds(t *testing.T) {
	op := &fakeOpener{w: 2, h: 2, frames: 1, fails: 2}
	f, err := openWithRetry(context.Background(), "clip.mp4", op.open, 10*time.Second, nil)
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, 3, op.opens)
}

func TestOpenWithRetryStopsOnCancel(t *testing.T) {
	op := &fakeOpener{w: 2, h: 2, frames: 1, fails: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := openWithRetry(ctx, "clip.mp4", op.open, time.Hour, nil)
	assert.Error(t, err)
}

func TestPlayerRequiresGesture(t *testing.T) {
	op := &fakeOpener{w: 2, h: 2, frames: 3}
	f, err := openFile("clip.mp4", op.open, nil)
	require.NoError(t, err)

	p := NewPlayer(f, PlayerOptions{RequireGesture: true}, nil)
	assert.ErrorIs(t, p.Start(context.Background()), ErrAutoplayRejected)
	assert.False(t, p.Playing())
	assert.False(t, p.Ready())

	p.NoteGesture()
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.Playing())
	require.Eventually(t, p.Ready, time.Second, 5*time.Millisecond)
	assert.NotNil(t, p.Frame())

	p.Stop()
	assert.False(t, p.Playing())
	p.Stop()
}

func TestPlayerCloseReleasesDecoder(t *testing.T) {
	op := &fakeOpener{w: 2, h: 2, frames: 1000}
	f, err := openFile("clip.mp4", op.open, nil)
	require.NoError(t, err)
	dec := f.dec.(*fakeDecoder)

	p := NewPlayer(f, PlayerOptions{}, nil)
	require.NoError(t, p.Start(context.Background()))
	p.Close()
	assert.False(t, p.Playing())
	assert.True(t, dec.closed)

	p.Close()
}

func TestSlot(t *testing.T) {
	var s Slot
	assert.False(t, s.Ready())
	assert.Nil(t, s.Frame())
	_, _, ok := s.Dimensions()
	assert.False(t, ok)

	op := &fakeOpener{w: 2, h: 2, frames: 1}
	f, err := openFile("clip.mp4", op.open, nil)
	require.NoError(t, err)
	require.NoError(t, f.Next())

	s.Set(f)
	assert.True(t, s.Ready())
	w, h, ok := s.Dimensions()
	assert.True(t, ok)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestPackRGBA(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range full.Pix {
		full.Pix[i] = byte(i)
	}

	// tight buffers pass through untouched
	buf, err := packRGBA(full, 4, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, full.Pix, buf)

	// sub-images carry the parent's stride and get packed
	sub := full.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	buf, err = packRGBA(sub, 2, 2, nil)
	require.NoError(t, err)
	require.Len(t, buf, 16)
	assert.Equal(t, full.Pix[full.PixOffset(1, 1):full.PixOffset(1, 1)+8], buf[:8])
	assert.Equal(t, full.Pix[full.PixOffset(1, 2):full.PixOffset(1, 2)+8], buf[8:])

	_, err = packRGBA(full, 2, 2, nil)
	assert.Error(t, err)
}

func TestProgressBarComplete(t *testing.T) {
	var out bytes.Buffer
	p := newProgressBar("Rendering", &out)
	p.Report(0.5)
	p.ReportComplete()
	assert.Contains(t, out.String(), "[==============================] 100.0%")

	p.ReportError(errors.New("disk full"))
	assert.Contains(t, out.String(), "Error: disk full")
}

type fakeWriter struct {
	frames int
	size   image.Point
	closed bool
}

func (w *fakeWriter) Write(img *image.RGBA) error {
	w.frames++
	w.size = img.Rect.Size()
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recordingProgress struct {
	last     float64
	complete bool
	err      error
}

func (r *recordingProgress) Report(p float64)      { r.last = p }
func (r *recordingProgress) ReportError(err error) { r.err = err }
func (r *recordingProgress) ReportComplete()       { r.complete = true }

func writeTrack(t *testing.T, dir string) string {
	t.Helper()
	tr := tracking.NewTrack(101, 80)
	for i := 0; i <= 10; i++ {
		tr.Add(tracking.Event{X: float64(i * 9), Y: 40, At: time.Duration(i) * 10 * time.Millisecond})
	}
	path := filepath.Join(dir, "track.json")
	require.NoError(t, tracking.SaveTrack(path, tr))
	return path
}

func TestPipelineRendersEveryFrame(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("not really a video"), 0o644))
	trackPath := writeTrack(t, dir)

	cfg := config.NewConfig()
	op := &fakeOpener{w: 16, h: 9, frames: 2}
	fw := &fakeWriter{}
	progress := &recordingProgress{}

	p := NewPipeline(cfg, nil, nil)
	p.openVideo = func(path string) (*File, error) { return openFile(path, op.open, nil) }
	p.newWriter = func(string, int, int, float64, float64) (FrameWriter, error) { return fw, nil }
	p.SetProgress(progress)

	require.NoError(t, p.Process(context.Background(), Job{
		VideoPath:  videoPath,
		TrackPath:  trackPath,
		OutputPath: filepath.Join(dir, "out.mp4"),
	}))

	// 100ms at 30fps is frames 0 through 3
	assert.Equal(t, 4, fw.frames)
	assert.Equal(t, image.Point{X: 100, Y: 80}, fw.size)
	assert.True(t, fw.closed)
	assert.True(t, progress.complete)
	assert.Equal(t, 1.0, progress.last)
	assert.NoError(t, progress.err)
}

func TestPipelineRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	p := NewPipeline(config.NewConfig(), nil, nil)
	err := p.Process(context.Background(), Job{
		VideoPath: filepath.Join(dir, "missing.mp4"),
		TrackPath: filepath.Join(dir, "missing.json"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
