package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Loop is the single driver of per-frame work. State owned by the frame
// function is only touched from the goroutine calling Tick; other goroutines
// hand mutations over with Post.
type Loop struct {
	Frame func(now time.Duration)

	logger *zap.Logger

	mu      sync.Mutex
	pending []func()
	spare   []func()

	ticks  uint64
	panics uint64
}

func New(frame func(now time.Duration), logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{Frame: frame, logger: logger}
}

// Post queues fn to run on the loop goroutine before the next frame.
// Safe to call from any goroutine; never blocks on the loop.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
}

// Tick drains the queue in posting order and renders one frame. A panic in
// a queued function or in the frame is logged and swallowed.
func (l *Loop) Tick(now time.Duration) {
	l.mu.Lock()
	batch := l.pending
	l.pending = l.spare[:0]
	l.mu.Unlock()

	for i, fn := range batch {
		l.guard("post", now, fn)
		batch[i] = nil
	}
	l.spare = batch[:0]

	if l.Frame != nil {
		l.guard("frame", now, func() { l.Frame(now) })
	}
	l.ticks++
}

// Run ticks once per value received on refresh until ctx is cancelled or
// refresh is closed.
func (l *Loop) Run(ctx context.Context, refresh <-chan time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-refresh:
			if !ok {
				return nil
			}
			l.Tick(now)
		}
	}
}

// Ticks reports how many frames have been run.
func (l *Loop) Ticks() uint64 { return l.ticks }

// Panics reports how many queued functions or frames panicked.
func (l *Loop) Panics() uint64 { return l.panics }

func (l *Loop) guard(stage string, now time.Duration, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics++
			l.logger.Error("recovered panic in render loop",
				zap.String("stage", stage),
				zap.Duration("now", now),
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"),
			)
		}
	}()
	fn()
}

// Ticker turns a wall-clock ticker into a refresh channel carrying the time
// elapsed since start. The channel closes when ctx is done.
func Ticker(ctx context.Context, interval time.Duration) <-chan time.Duration {
	out := make(chan time.Duration)
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case at := <-t.C:
				select {
				case out <- at.Sub(start):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Steps produces n evenly spaced frame times starting at zero, for offline
// rendering at a fixed frame rate.
func Steps(ctx context.Context, n int, step time.Duration) <-chan time.Duration {
	out := make(chan time.Duration)
	go func() {
		defer close(out)
		for i := 0; i < n; i++ {
			select {
			case out <- time.Duration(i) * step:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
