package video

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultFPS = 30

type PlayerOptions struct {
	// RequireGesture makes Start fail with ErrAutoplayRejected until
	// NoteGesture has been called.
	RequireGesture bool
	// FPS overrides the file's native rate when positive.
	FPS float64
}

// Player decodes a File on its own goroutine at the video's frame rate and
// publishes whole frames for the render loop to sample.
type Player struct {
	file   *File
	opts   PlayerOptions
	logger *zap.Logger

	gesture atomic.Bool

	mu      sync.Mutex
	frame   *image.RGBA
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	// decoded frames cycle through the ring so a frame handed to a reader
	// is not overwritten by the very next decode.
	ring [3]*image.RGBA
	next int
}

func NewPlayer(file *File, opts PlayerOptions, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{file: file, opts: opts, logger: logger}
}

// NoteGesture records a user gesture, lifting the RequireGesture gate.
func (p *Player) NoteGesture() {
	p.gesture.Store(true)
}

// Start begins decoding. Calling Start on a running player is a no-op.
func (p *Player) Start(ctx context.Context) error {
	if p.opts.RequireGesture && !p.gesture.Load() {
		return ErrAutoplayRejected
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.started = true
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)

	p.logger.Info("video playback started",
		zap.String("path", p.file.path),
		zap.Duration("interval", p.interval()))
	return nil
}

// Stop halts decoding and waits for the decode goroutine to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.started = false
	p.mu.Unlock()

	cancel()
	<-done
}

// Close stops playback and releases the decoder.
func (p *Player) Close() {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.file.Close()
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

func (p *Player) interval() time.Duration {
	fps := p.opts.FPS
	if fps <= 0 {
		fps = p.file.FPS()
	}
	if fps <= 0 {
		fps = defaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()

	p.advance()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.advance()
		}
	}
}

func (p *Player) advance() {
	if err := p.file.Next(); err != nil {
		p.logger.Warn("failed to decode frame", zap.Error(err))
		return
	}
	buf := p.ring[p.next]
	if buf == nil {
		buf = image.NewRGBA(p.file.frame.Rect)
		p.ring[p.next] = buf
	}
	copy(buf.Pix, p.file.frame.Pix)
	p.next = (p.next + 1) % len(p.ring)

	p.mu.Lock()
	p.frame = buf
	p.mu.Unlock()
}

func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame != nil
}

func (p *Player) Dimensions() (int, int, bool) {
	return p.file.Dimensions()
}

func (p *Player) Frame() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frame == nil {
		return nil
	}
	return p.frame
}
