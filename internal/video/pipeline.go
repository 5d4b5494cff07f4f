package video

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/loop"
	"github.com/vedantwpatil/cursor-reveal/internal/metrics"
	"github.com/vedantwpatil/cursor-reveal/internal/render"
	"github.com/vedantwpatil/cursor-reveal/internal/scene"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
)

// Job names the inputs and output of one offline render.
type Job struct {
	VideoPath  string
	TrackPath  string
	OutputPath string
}

// Pipeline replays a recorded pointer track over a video at a fixed frame
// rate and encodes the composed frames.
type Pipeline struct {
	config   *config.Config
	frames   *metrics.Frames
	progress ProgressReporter
	logger   *zap.Logger

	openVideo func(path string) (*File, error)
	newWriter func(path string, w, h int, fps, quality float64) (FrameWriter, error)
}

func NewPipeline(cfg *config.Config, frames *metrics.Frames, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		config: cfg,
		frames: frames,
		logger: logger,
		openVideo: func(path string) (*File, error) {
			return Open(path, logger)
		},
		newWriter: func(path string, w, h int, fps, quality float64) (FrameWriter, error) {
			return NewWriter(path, w, h, fps, quality)
		},
	}
}

func (p *Pipeline) SetProgress(r ProgressReporter) {
	p.progress = r
}

// validateInput checks if the input file exists and is valid
func (p *Pipeline) validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file %s is a directory", path)
	}
	return nil
}

func (p *Pipeline) Process(ctx context.Context, job Job) error {
	// 1. Validate input
	for _, path := range []string{job.VideoPath, job.TrackPath} {
		if err := p.validateInput(path); err != nil {
			return err
		}
	}

	// 2. Load the pointer track and open the video
	track, err := tracking.LoadTrack(job.TrackPath)
	if err != nil {
		return err
	}
	file, err := p.openVideo(job.VideoPath)
	if err != nil {
		return err
	}
	defer file.Close()

	w, h := outputSize(p.config.Render, track, file)
	writer, err := p.newWriter(job.OutputPath, w, h, p.config.Render.FPS, p.config.Render.Quality)
	if err != nil {
		return err
	}
	defer writer.Close()

	// 3. Compose and encode every frame
	canvas := render.NewCanvas(w, h)
	sc := scene.New(p.config, canvas, file, p.frames, p.logger)

	step := time.Duration(float64(time.Second) / p.config.Render.FPS)
	total := int(track.Duration()/step) + 1
	sx, sy := trackScale(track, w, h)

	p.logger.Info("rendering track",
		zap.Stringer("track", track.ID),
		zap.Int("events", len(track.Events)),
		zap.Int("frames", total),
		zap.Int("width", w),
		zap.Int("height", h))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cursor := track.Cursor()
	var frameErr error
	written := 0
	l := loop.New(func(now time.Duration) {
		if frameErr != nil {
			return
		}
		for _, e := range cursor.Until(now) {
			e.X *= sx
			e.Y *= sy
			sc.Handle(e)
		}
		if err := file.Next(); err != nil {
			frameErr = err
			cancel()
			return
		}
		sc.Render()
		if err := writer.Write(canvas.Image()); err != nil {
			frameErr = fmt.Errorf("failed to write frame %d: %w", written, err)
			cancel()
			return
		}
		written++
		if p.progress != nil {
			p.progress.Report(float64(written) / float64(total))
		}
	}, p.logger)

	err = l.Run(ctx, loop.Steps(ctx, total, step))
	if frameErr != nil {
		err = frameErr
	}
	if err != nil {
		if p.progress != nil {
			p.progress.ReportError(err)
		}
		return err
	}

	// 4. Report completion
	if p.progress != nil {
		p.progress.ReportComplete()
	}
	p.logger.Info("render complete",
		zap.String("output", job.OutputPath),
		zap.Int("frames", written),
		zap.Int("video_loops", file.Loops()))
	return nil
}

// outputSize picks the configured size, then the recorded screen size, then
// the video's own size.
func outputSize(rc config.RenderConfig, track *tracking.Track, file *File) (int, int) {
	if rc.Width > 0 && rc.Height > 0 {
		return even(rc.Width), even(rc.Height)
	}
	if track.Width > 0 && track.Height > 0 {
		return even(track.Width), even(track.Height)
	}
	w, h, _ := file.Dimensions()
	return even(w), even(h)
}

// even rounds down to an even size, which yuv420p encoders require.
func even(n int) int {
	if n > 1 {
		return n &^ 1
	}
	return n
}

// trackScale maps recorded screen coordinates onto the output frame.
func trackScale(track *tracking.Track, w, h int) (float64, float64) {
	if track.Width <= 0 || track.Height <= 0 {
		return 1, 1
	}
	return float64(w) / float64(track.Width), float64(h) / float64(track.Height)
}
