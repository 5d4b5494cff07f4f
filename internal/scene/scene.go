package scene

import (
	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/metrics"
	"github.com/vedantwpatil/cursor-reveal/internal/render"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
	"github.com/vedantwpatil/cursor-reveal/internal/trail"
)

// Scene wires the tracker, trail, modes and compositor for one surface.
// Every method must be called from the render loop goroutine.
type Scene struct {
	Modes      *render.Modes
	Trail      *trail.Store
	Tracker    *tracking.Tracker
	Compositor *render.Compositor

	logger *zap.Logger
}

// New builds a scene from cfg. frames may be nil.
func New(cfg *config.Config, surface render.Surface, video render.VideoSource,
	frames *metrics.Frames, logger *zap.Logger,
) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := cfg.Effect
	modes := render.NewModes(cfg.ShapeKind(), cfg.Mode.MaskEnabled)
	store := trail.NewStore(e.TrailCapacity, e.DecayStep)

	var spawner tracking.Spawner = store
	if frames != nil {
		spawner = countingSpawner{store: store, frames: frames}
	}
	tracker := tracking.NewTracker(Params(cfg), modes, spawner)

	comp := render.NewCompositor(surface, video, tracker, store, modes,
		render.Options{DecayInFullVideo: e.DecayInFullVideo}, logger)
	if frames != nil {
		comp.SetObserver(frames)
	}

	return &Scene{
		Modes:      modes,
		Trail:      store,
		Tracker:    tracker,
		Compositor: comp,
		logger:     logger,
	}
}

// Params maps the effect section of cfg onto tracker parameters.
func Params(cfg *config.Config) tracking.Params {
	e := cfg.Effect
	return tracking.Params{
		BaseRadius:      e.BaseRadius,
		MaxRadius:       e.MaxRadius,
		SpeedMultiplier: e.SpeedMultiplier,
		MinSpawnSpeed:   e.MinSpawnSpeed,
		SpawnInterval:   e.SpawnInterval.Std(),
		InitialOpacity:  e.InitialOpacity,
	}
}

// Apply takes the mode section of a reloaded config.
func (s *Scene) Apply(cfg *config.Config) {
	s.Modes.SetShape(cfg.ShapeKind())
	s.Modes.SetMaskEnabled(cfg.Mode.MaskEnabled)
	s.logger.Info("mode updated",
		zap.Stringer("shape", s.Modes.Shape()),
		zap.Bool("mask", s.Modes.MaskEnabled()))
}

func (s *Scene) Handle(e tracking.Event) bool {
	return s.Tracker.Handle(e)
}

func (s *Scene) Render() render.Mode {
	return s.Compositor.Render()
}

type countingSpawner struct {
	store  *trail.Store
	frames *metrics.Frames
}

func (c countingSpawner) Append(m trail.Mask) {
	c.store.Append(m)
	c.frames.Spawned()
}
