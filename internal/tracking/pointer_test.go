package tracking

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
	"github.com/vedantwpatil/cursor-reveal/internal/trail"
)

type fixedShape shape.Kind

func (f fixedShape) Shape() shape.Kind { return shape.Kind(f) }

type recordingSpawner struct {
	masks []trail.Mask
	at    []time.Duration
	now   time.Duration
}

func (r *recordingSpawner) Append(m trail.Mask) {
	r.masks = append(r.masks, m)
	r.at = append(r.at, r.now)
}

func newTestTracker() (*Tracker, *recordingSpawner) {
	sp := &recordingSpawner{}
	return NewTracker(DefaultParams(), fixedShape(shape.Star), sp), sp
}

func TestRadiusScenario(t *testing.T) {
	tr, sp := newTestTracker()
	spawned := tr.Move(shape.Point{X: 10, Y: 0}, 100*time.Millisecond)

	require.True(t, spawned)
	st := tr.State()
	assert.Equal(t, 10.0, st.Speed)
	assert.Equal(t, 78.59375, st.Radius)
	assert.True(t, st.Valid)

	require.Len(t, sp.masks, 1)
	m := sp.masks[0]
	assert.Equal(t, shape.Point{X: 10, Y: 0}, m.Position)
	assert.Equal(t, 78.59375, m.Radius)
	assert.Equal(t, InitialOpacity, m.Opacity)
	assert.Equal(t, shape.Star, m.Shape)
}

func TestRadiusAlwaysClamped(t *testing.T) {
	tr, _ := newTestTracker()
	for _, speed := range []float64{0, 0.5, 1, 10, 87.890625, 100, 10000, math.MaxFloat64 / 4} {
		r := tr.RadiusFor(speed)
		assert.GreaterOrEqual(t, r, BaseRadius, "speed %v", speed)
		assert.LessOrEqual(t, r, MaxRadius, "speed %v", speed)
	}
	assert.Equal(t, BaseRadius, tr.RadiusFor(0))
	assert.Equal(t, MaxRadius, tr.RadiusFor(10000))
}

func TestRadiusBoundsAcrossMoves(t *testing.T) {
	tr, _ := newTestTracker()
	pts := []shape.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 5000, Y: 5000}, {X: 5001, Y: 5000}, {X: 3, Y: 4}}
	for i, p := range pts {
		tr.Move(p, time.Duration(i)*time.Millisecond)
		r := tr.State().Radius
		assert.GreaterOrEqual(t, r, BaseRadius)
		assert.LessOrEqual(t, r, MaxRadius)
	}
}

func TestThrottle(t *testing.T) {
	tr, sp := newTestTracker()
	// 1ms cadence, 3px per event, well above the speed threshold
	for i := 1; i <= 500; i++ {
		now := time.Duration(i) * time.Millisecond
		sp.now = now
		tr.Move(shape.Point{X: float64(i * 3), Y: 0}, now)
	}

	require.Greater(t, len(sp.at), 1)
	for i := 1; i < len(sp.at); i++ {
		gap := sp.at[i] - sp.at[i-1]
		assert.GreaterOrEqual(t, gap, SpawnInterval, "spawn %d", i)
		assert.Greater(t, gap, SpawnInterval, "the interval is exclusive")
	}
	assert.Equal(t, len(sp.masks), tr.Spawns())
}

func TestSlowMovesDoNotSpawn(t *testing.T) {
	tr, sp := newTestTracker()
	tr.Move(shape.Point{X: 0.5, Y: 0.5}, time.Second)
	tr.Move(shape.Point{X: 1, Y: 1}, 2*time.Second)
	assert.Empty(t, sp.masks)

	// the previous position still advanced on every event
	assert.Equal(t, shape.Point{X: 1, Y: 1}, tr.State().Previous)
}

func TestPreviousAdvancesWhileThrottled(t *testing.T) {
	tr, sp := newTestTracker()
	tr.Move(shape.Point{X: 10, Y: 0}, 20*time.Millisecond)
	tr.Move(shape.Point{X: 20, Y: 0}, 21*time.Millisecond)

	assert.Len(t, sp.masks, 1)
	st := tr.State()
	assert.Equal(t, shape.Point{X: 20, Y: 0}, st.Previous)
	assert.Equal(t, 10.0, st.Speed)
}

func TestLeaveInvalidates(t *testing.T) {
	tr, _ := newTestTracker()
	assert.False(t, tr.State().Valid)

	tr.Handle(Event{X: 5, Y: 5, At: time.Millisecond})
	assert.True(t, tr.State().Valid)

	tr.Handle(Event{At: 2 * time.Millisecond, Kind: EventLeave})
	assert.False(t, tr.State().Valid)

	tr.Handle(Event{X: 6, Y: 6, At: 3 * time.Millisecond})
	assert.True(t, tr.State().Valid)
}

func TestStoreStaysBoundedUnderTracker(t *testing.T) {
	store := trail.NewStore(trail.DefaultCapacity, trail.DefaultDecayStep)
	tr := NewTracker(DefaultParams(), fixedShape(shape.Circle), store)

	for i := 1; i <= 80; i++ {
		tr.Move(shape.Point{X: float64(i * 10), Y: 0}, time.Duration(i)*20*time.Millisecond)
		require.LessOrEqual(t, store.Len(), trail.DefaultCapacity)
	}
	assert.Equal(t, 80, tr.Spawns())
	assert.Equal(t, 79, store.Len())
	assert.Equal(t, 20.0, store.Snapshot()[0].Position.X)
}

func TestParamsDefaults(t *testing.T) {
	tr := NewTracker(Params{}, fixedShape(shape.Circle), &recordingSpawner{})
	assert.Equal(t, DefaultParams(), tr.Params())
}

func TestZeroParamsKeepSpawnThreshold(t *testing.T) {
	spawner := &recordingSpawner{}
	tr := NewTracker(Params{}, fixedShape(shape.Circle), spawner)

	// speed 0.5 is moving but below the threshold of 1
	tr.Move(shape.Point{X: 0.5, Y: 0}, 20*time.Millisecond)
	assert.Equal(t, 0, tr.Spawns())

	tr.Move(shape.Point{X: 3, Y: 0}, 40*time.Millisecond)
	assert.Equal(t, 1, tr.Spawns())
}

func TestTrackRoundTrip(t *testing.T) {
	tr := NewTrack(1920, 1080)
	tr.Add(Event{X: 1, Y: 2, At: 1500 * time.Microsecond})
	tr.Add(Event{At: 3 * time.Millisecond, Kind: EventLeave})

	var buf bytes.Buffer
	require.NoError(t, tr.Encode(&buf))
	assert.Contains(t, buf.String(), `"at_ms": 1.5`)

	got, err := DecodeTrack(&buf)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, tr.Events, got.Events)
	assert.Equal(t, 3*time.Millisecond, got.Duration())
}

func TestDecodeTrackSortsAndRejects(t *testing.T) {
	in := `{"width":10,"height":10,"events":[{"x":2,"y":0,"at_ms":5},{"x":1,"y":0,"at_ms":1}]}`
	got, err := DecodeTrack(bytes.NewBufferString(in))
	require.NoError(t, err)
	require.Len(t, got.Events, 2)
	assert.Equal(t, 1.0, got.Events[0].X)

	_, err = DecodeTrack(bytes.NewBufferString(`{"events":[{"kind":"wiggle"}]}`))
	assert.Error(t, err)
}

func TestCursorUntil(t *testing.T) {
	tr := NewTrack(0, 0)
	for i := 0; i < 5; i++ {
		tr.Add(Event{X: float64(i), At: time.Duration(i) * 10 * time.Millisecond})
	}
	c := tr.Cursor()
	assert.Len(t, c.Until(15*time.Millisecond), 2)
	assert.Empty(t, c.Until(15*time.Millisecond))
	assert.Len(t, c.Until(time.Second), 3)
	assert.True(t, c.Done())
}
