package playback

import (
	"context"

	"go.uber.org/zap"
)

type State uint8

const (
	NotStarted State = iota
	PendingUserGesture
	Playing
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case PendingUserGesture:
		return "pending_user_gesture"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Starter begins playback. video.Player implements it.
type Starter interface {
	Start(ctx context.Context) error
}

// gestureNoter is implemented by starters that gate playback on a gesture.
type gestureNoter interface {
	NoteGesture()
}

// Machine drives autoplay: start as soon as metadata is known, and if the
// host refuses, retry once on the first user gesture.
type Machine struct {
	starter Starter
	logger  *zap.Logger

	state    State
	retried  bool
	gestured bool
}

// NewMachine creates a machine. starter may be nil when the video is still
// loading; Attach supplies it later.
func NewMachine(starter Starter, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{starter: starter, logger: logger}
}

func (m *Machine) State() State { return m.state }

// Attach supplies the starter once the video has loaded, replays any gesture
// seen while it was loading, and attempts the first start.
func (m *Machine) Attach(ctx context.Context, starter Starter) State {
	m.starter = starter
	if m.gestured {
		m.noteGesture()
	}
	return m.MetadataReady(ctx)
}

// MetadataReady attempts the first start. It only acts in NotStarted.
func (m *Machine) MetadataReady(ctx context.Context) State {
	if m.state != NotStarted || m.starter == nil {
		return m.state
	}
	if err := m.starter.Start(ctx); err != nil {
		m.logger.Info("autoplay rejected, waiting for a user gesture", zap.Error(err))
		m.state = PendingUserGesture
		return m.state
	}
	m.playing()
	return m.state
}

// GestureObserved retries a rejected start once. Later gestures are ignored.
func (m *Machine) GestureObserved(ctx context.Context) State {
	m.gestured = true
	if m.starter == nil {
		return m.state
	}
	m.noteGesture()
	if m.state != PendingUserGesture || m.retried {
		return m.state
	}
	m.retried = true
	if err := m.starter.Start(ctx); err != nil {
		m.logger.Warn("playback start failed after user gesture", zap.Error(err))
		return m.state
	}
	m.playing()
	return m.state
}

func (m *Machine) noteGesture() {
	if g, ok := m.starter.(gestureNoter); ok {
		g.NoteGesture()
	}
}

func (m *Machine) playing() {
	m.state = Playing
	m.logger.Info("playback started")
}
