package video

import (
	"errors"
	"image"
	"sync"
)

var (
	// ErrNotReady is returned when a frame is requested before any has been
	// decoded.
	ErrNotReady = errors.New("video: not ready")
	// ErrAutoplayRejected is returned by Player.Start when playback needs a
	// user gesture that has not been observed yet.
	ErrAutoplayRejected = errors.New("video: autoplay rejected")
)

// Source is the read side of a video the compositor samples once per frame.
// Ready reports whether Frame would return a presentable image and must not
// block on decoding.
type Source interface {
	Ready() bool
	Dimensions() (w, h int, ok bool)
	Frame() image.Image
}

// ProgressReporter receives progress for long running video work.
type ProgressReporter interface {
	Report(progress float64)
	ReportError(err error)
	ReportComplete()
}

// Slot is a Source whose backing source arrives later, for example once a
// file has finished opening in the background. Until then it is never ready.
type Slot struct {
	mu  sync.RWMutex
	src Source
}

func (s *Slot) Set(src Source) {
	s.mu.Lock()
	s.src = src
	s.mu.Unlock()
}

func (s *Slot) get() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.src
}

func (s *Slot) Ready() bool {
	src := s.get()
	return src != nil && src.Ready()
}

func (s *Slot) Dimensions() (int, int, bool) {
	if src := s.get(); src != nil {
		return src.Dimensions()
	}
	return 0, 0, false
}

func (s *Slot) Frame() image.Image {
	if src := s.get(); src != nil {
		return src.Frame()
	}
	return nil
}
