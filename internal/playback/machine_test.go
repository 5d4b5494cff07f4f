package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errRejected = errors.New("rejected")

type scriptedStarter struct {
	results  []error
	calls    int
	gestures int
}

func (s *scriptedStarter) Start(context.Context) error {
	s.calls++
	if len(s.results) == 0 {
		return nil
	}
	err := s.results[0]
	s.results = s.results[1:]
	return err
}

func (s *scriptedStarter) NoteGesture() { s.gestures++ }

func TestAutoplaySucceeds(t *testing.T) {
	s := &scriptedStarter{}
	m := NewMachine(s, nil)
	assert.Equal(t, NotStarted, m.State())

	assert.Equal(t, Playing, m.MetadataReady(context.Background()))
	assert.Equal(t, Playing, m.MetadataReady(context.Background()))
	assert.Equal(t, Playing, m.GestureObserved(context.Background()))
	assert.Equal(t, 1, s.calls)
}

func TestGestureBeforeMetadataDoesNotStart(t *testing.T) {
	s := &scriptedStarter{}
	m := NewMachine(s, nil)
	assert.Equal(t, NotStarted, m.GestureObserved(context.Background()))
	assert.Equal(t, 0, s.calls)
	assert.Equal(t, 1, s.gestures)
}

func TestRejectedThenGestureStarts(t *testing.T) {
	s := &scriptedStarter{results: []error{errRejected, nil}}
	m := NewMachine(s, nil)

	assert.Equal(t, PendingUserGesture, m.MetadataReady(context.Background()))
	assert.Equal(t, Playing, m.GestureObserved(context.Background()))
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, 1, s.gestures)
}

func TestSecondRejectionStaysPending(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := &scriptedStarter{results: []error{errRejected, errRejected}}
	m := NewMachine(s, zap.New(core))

	m.MetadataReady(context.Background())
	assert.Equal(t, PendingUserGesture, m.GestureObserved(context.Background()))
	assert.Equal(t, PendingUserGesture, m.GestureObserved(context.Background()))
	assert.Equal(t, 2, s.calls, "only one retry")
	assert.Equal(t, 1, logs.FilterMessage("playback start failed after user gesture").Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending_user_gesture", PendingUserGesture.String())
	assert.Equal(t, "unknown", State(9).String())
}

// gatedStarter refuses to start until it has seen a gesture.
type gatedStarter struct {
	noted bool
	calls int
}

func (g *gatedStarter) Start(context.Context) error {
	g.calls++
	if !g.noted {
		return errRejected
	}
	return nil
}

func (g *gatedStarter) NoteGesture() { g.noted = true }

func TestGestureWhileLoadingUnlocksAutoplay(t *testing.T) {
	m := NewMachine(nil, nil)
	assert.Equal(t, NotStarted, m.MetadataReady(context.Background()))
	assert.Equal(t, NotStarted, m.GestureObserved(context.Background()))

	s := &gatedStarter{}
	assert.Equal(t, Playing, m.Attach(context.Background(), s))
	assert.True(t, s.noted)
	assert.Equal(t, 1, s.calls)
}

func TestAttachWithoutGestureWaits(t *testing.T) {
	m := NewMachine(nil, nil)
	s := &gatedStarter{}
	assert.Equal(t, PendingUserGesture, m.Attach(context.Background(), s))
	assert.Equal(t, Playing, m.GestureObserved(context.Background()))
	assert.Equal(t, 2, s.calls)
}
