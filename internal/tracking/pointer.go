package tracking

import (
	"math"
	"time"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
	"github.com/vedantwpatil/cursor-reveal/internal/trail"
)

// Defaults for the speed-driven mask radius and trail spawning.
const (
	BaseRadius      = 58.59375
	MaxRadius       = 234.375
	SpeedMultiplier = 2.0
	MinSpawnSpeed   = 1.0
	SpawnInterval   = 16 * time.Millisecond
	InitialOpacity  = 0.8
)

// Params tunes a Tracker. Zero or negative fields fall back to the package
// defaults.
type Params struct {
	BaseRadius      float64
	MaxRadius       float64
	SpeedMultiplier float64
	MinSpawnSpeed   float64
	SpawnInterval   time.Duration
	InitialOpacity  float64
}

func DefaultParams() Params {
	return Params{
		BaseRadius:      BaseRadius,
		MaxRadius:       MaxRadius,
		SpeedMultiplier: SpeedMultiplier,
		MinSpawnSpeed:   MinSpawnSpeed,
		SpawnInterval:   SpawnInterval,
		InitialOpacity:  InitialOpacity,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.BaseRadius <= 0 {
		p.BaseRadius = d.BaseRadius
	}
	if p.MaxRadius < p.BaseRadius {
		p.MaxRadius = math.Max(d.MaxRadius, p.BaseRadius)
	}
	if p.SpeedMultiplier <= 0 {
		p.SpeedMultiplier = d.SpeedMultiplier
	}
	if p.MinSpawnSpeed <= 0 {
		p.MinSpawnSpeed = d.MinSpawnSpeed
	}
	if p.SpawnInterval <= 0 {
		p.SpawnInterval = d.SpawnInterval
	}
	if p.InitialOpacity <= 0 || p.InitialOpacity > 1 {
		p.InitialOpacity = d.InitialOpacity
	}
	return p
}

// PointerState is the tracker's view of the pointer after the latest event.
type PointerState struct {
	Position shape.Point
	Previous shape.Point
	Speed    float64
	Radius   float64
	// Valid is false before the first move and after the pointer leaves.
	Valid bool
}

// ShapeSource reports the currently selected mask shape.
type ShapeSource interface {
	Shape() shape.Kind
}

// Spawner receives trail masks emitted by the tracker.
type Spawner interface {
	Append(trail.Mask)
}

// Tracker turns raw pointer moves into speed, a dynamic radius and
// throttled trail spawns. It must be driven from a single goroutine.
type Tracker struct {
	params  Params
	shapes  ShapeSource
	spawner Spawner

	state     PointerState
	lastSpawn time.Duration
	spawned   bool
	spawns    int
}

func NewTracker(params Params, shapes ShapeSource, spawner Spawner) *Tracker {
	p := params.withDefaults()
	return &Tracker{
		params:  p,
		shapes:  shapes,
		spawner: spawner,
		state:   PointerState{Radius: p.BaseRadius},
	}
}

// Move records a pointer position observed at time at and reports whether
// a trail mask was spawned.
func (t *Tracker) Move(p shape.Point, at time.Duration) bool {
	speed := p.Dist(t.state.Previous)
	radius := t.RadiusFor(speed)

	t.state.Position = p
	t.state.Speed = speed
	t.state.Radius = radius
	t.state.Valid = true

	spawn := speed > t.params.MinSpawnSpeed &&
		(!t.spawned || at-t.lastSpawn > t.params.SpawnInterval)
	if spawn {
		t.spawner.Append(trail.Mask{
			Position: p,
			Radius:   radius,
			Opacity:  t.params.InitialOpacity,
			Shape:    t.shapes.Shape(),
		})
		t.lastSpawn = at
		t.spawned = true
		t.spawns++
	}

	t.state.Previous = p
	return spawn
}

// Leave marks the pointer as off the surface. The next Move makes it valid
// again.
func (t *Tracker) Leave() {
	t.state.Valid = false
}

// Handle applies a recorded or live event.
func (t *Tracker) Handle(e Event) bool {
	switch e.Kind {
	case EventLeave:
		t.Leave()
		return false
	default:
		return t.Move(shape.Point{X: e.X, Y: e.Y}, e.At)
	}
}

// RadiusFor maps a per-event speed to the clamped mask radius.
func (t *Tracker) RadiusFor(speed float64) float64 {
	r := t.params.BaseRadius + speed*t.params.SpeedMultiplier
	return math.Min(math.Max(r, t.params.BaseRadius), t.params.MaxRadius)
}

func (t *Tracker) State() PointerState { return t.state }

// Spawns returns how many masks the tracker has emitted.
func (t *Tracker) Spawns() int { return t.spawns }

func (t *Tracker) Params() Params { return t.params }
