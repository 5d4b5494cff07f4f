// Package capture reads global pointer motion from the OS input hooks. It
// needs cgo and the platform input headers, so it is kept apart from the
// pure tracking code.
package capture

import (
	"context"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
)

// Hook streams pointer events from the system-wide input hook.
type Hook struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Hook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hook{logger: logger}
}

// Track sends pointer motion to sink until ctx is cancelled. Timestamps are
// relative to startingTime. sink runs on the hook goroutine, so callers must
// serialize it with their own state.
func (h *Hook) Track(ctx context.Context, startingTime time.Time, sink func(tracking.Event)) {
	// Seed with the current location so the first delta is not measured
	// from the screen origin.
	x, y := robotgo.Location()
	sink(tracking.Event{X: float64(x), Y: float64(y), At: time.Since(startingTime)})

	evChan := hook.Start()
	defer hook.End()
	h.logger.Info("Hook process started, waiting for pointer events")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Mouse tracking stopped")
			return
		case ev, ok := <-evChan:
			if !ok {
				h.logger.Info("Hook channel closed")
				return
			}
			switch ev.Kind {
			case hook.MouseMove, hook.MouseDrag:
				sink(tracking.Event{
					X:  float64(ev.X),
					Y:  float64(ev.Y),
					At: ev.When.Sub(startingTime),
				})
			case hook.MouseDown:
				h.logger.Debug("Click detected",
					zap.Int16("x", ev.X),
					zap.Int16("y", ev.Y),
					zap.Duration("at", ev.When.Sub(startingTime)))
			}
		}
	}
}

// ScreenSize reports the primary display size used to size recorded tracks.
func (h *Hook) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}
