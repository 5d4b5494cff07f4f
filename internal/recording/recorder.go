package recording

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
)

// Capturer is the source of global pointer motion. capture.Hook implements
// it on top of the OS input hooks.
type Capturer interface {
	Track(ctx context.Context, start time.Time, sink func(tracking.Event))
	ScreenSize() (int, int)
}

// Recorder captures global pointer motion into a track file.
type Recorder struct {
	config *config.Config
	logger *zap.Logger

	capturer Capturer

	isRecording bool
	isDone      bool
	outputPath  string
	track       *tracking.Track
	lastKept    time.Duration
	stopChan    chan struct{}
	doneChan    chan struct{}
	startTime   time.Time
	saveErr     error
	mu          sync.Mutex
}

func NewRecorder(cfg *config.Config, capturer Capturer, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		config:   cfg,
		logger:   logger,
		capturer: capturer,
	}
}

// Start begins capturing into <output dir>/<baseName>.json.
func (r *Recorder) Start(baseName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRecording {
		return fmt.Errorf("recording already in progress")
	}

	outputDir := r.config.Recording.OutputDir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w, h := r.capturer.ScreenSize()
	r.outputPath = filepath.Join(outputDir, baseName+".json")
	r.track = tracking.NewTrack(w, h)
	r.isRecording = true
	r.isDone = false
	r.saveErr = nil
	r.lastKept = -1
	r.stopChan = make(chan struct{})
	r.doneChan = make(chan struct{})
	r.startTime = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	captured := make(chan struct{})
	go func() {
		defer close(captured)
		r.capturer.Track(ctx, r.startTime, r.add)
	}()
	go r.finish(cancel, captured, r.stopChan, r.doneChan)

	r.logger.Info("pointer recording started",
		zap.Stringer("track", r.track.ID),
		zap.String("output", r.outputPath),
		zap.Int("screen_width", w),
		zap.Int("screen_height", h))
	return nil
}

// add keeps at most one event per target frame interval.
func (r *Recorder) add(e tracking.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRecording {
		return
	}
	if r.lastKept >= 0 && e.At-r.lastKept < r.minGap() {
		return
	}
	r.lastKept = e.At
	r.track.Add(e)
}

func (r *Recorder) minGap() time.Duration {
	fps := r.config.Recording.TargetFPS
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

func (r *Recorder) finish(cancel context.CancelFunc, captured, stop, done chan struct{}) {
	defer close(done)

	<-stop
	cancel()
	<-captured

	r.mu.Lock()
	track, path := r.track, r.outputPath
	r.mu.Unlock()

	err := tracking.SaveTrack(path, track)
	if err != nil {
		r.logger.Error("failed to save track", zap.String("output", path), zap.Error(err))
	} else {
		r.logger.Info("pointer recording saved",
			zap.String("output", path),
			zap.Int("events", len(track.Events)),
			zap.Duration("duration", track.Duration()))
	}

	r.mu.Lock()
	r.isDone = true
	r.saveErr = err
	r.mu.Unlock()
}

// Stop ends the capture and waits until the track is written.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.isRecording {
		r.mu.Unlock()
		return fmt.Errorf("no recording in progress")
	}
	r.isRecording = false
	stop, done := r.stopChan, r.doneChan
	r.mu.Unlock()

	close(stop)
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveErr
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRecording
}

func (r *Recorder) IsDone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDone
}

func (r *Recorder) GetOutputPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputPath
}

// GetTrack returns the captured track. Only meaningful once IsDone.
func (r *Recorder) GetTrack() *tracking.Track {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.track
}
