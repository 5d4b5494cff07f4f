package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap/zapcore"

	"github.com/vedantwpatil/cursor-reveal/internal/shape"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Effect    EffectConfig    `json:"effect"`
	Mode      ModeConfig      `json:"mode"`
	Playback  PlaybackConfig  `json:"playback"`
	Recording RecordingConfig `json:"recording"`
	Render    RenderConfig    `json:"render"`
	Window    WindowConfig    `json:"window"`
	Log       LogConfig       `json:"log"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// EffectConfig tunes the pointer tracker and the trail.
type EffectConfig struct {
	BaseRadius       float64  `json:"base_radius"`
	MaxRadius        float64  `json:"max_radius"`
	SpeedMultiplier  float64  `json:"speed_multiplier"`
	MinSpawnSpeed    float64  `json:"min_spawn_speed"`
	SpawnInterval    Duration `json:"spawn_interval"`
	InitialOpacity   float64  `json:"initial_opacity"`
	TrailCapacity    int      `json:"trail_capacity"`
	DecayStep        float64  `json:"decay_step"`
	DecayInFullVideo bool     `json:"decay_in_full_video"`
}

type ModeConfig struct {
	Shape       string `json:"shape"`
	MaskEnabled bool   `json:"mask_enabled"`
}

type PlaybackConfig struct {
	// RequireGesture holds playback back until the first click or touch.
	RequireGesture      bool     `json:"require_gesture"`
	OpenRetryMaxElapsed Duration `json:"open_retry_max_elapsed"`
}

type RecordingConfig struct {
	TargetFPS int    `json:"target_fps"`
	OutputDir string `json:"output_dir"`
}

type RenderConfig struct {
	FPS     float64 `json:"fps"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Quality float64 `json:"quality"`
}

type WindowConfig struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type LogConfig struct {
	Environment string `json:"environment"`
	Level       string `json:"level"`
}

type MetricsConfig struct {
	Address string `json:"address"`
}

func NewConfig() *Config {
	return &Config{
		Effect: EffectConfig{
			BaseRadius:      58.59375,
			MaxRadius:       234.375,
			SpeedMultiplier: 2,
			MinSpawnSpeed:   1,
			SpawnInterval:   Duration(16 * time.Millisecond),
			InitialOpacity:  0.8,
			TrailCapacity:   79,
			DecayStep:       0.006,
		},
		Mode: ModeConfig{
			Shape:       "circle",
			MaskEnabled: true,
		},
		Playback: PlaybackConfig{
			OpenRetryMaxElapsed: Duration(30 * time.Second),
		},
		Recording: RecordingConfig{
			TargetFPS: 60,
			OutputDir: "output",
		},
		Render: RenderConfig{
			FPS:     30,
			Quality: 0.8,
		},
		Window: WindowConfig{
			Title:  "reveal",
			Width:  1280,
			Height: 720,
		},
		Log: LogConfig{
			Environment: "development",
			Level:       "info",
		},
	}
}

// Load reads a JSON config file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	e := c.Effect
	if e.BaseRadius <= 0 {
		errs = append(errs, fmt.Errorf("effect.base_radius must be positive, got %v", e.BaseRadius))
	}
	if e.MaxRadius < e.BaseRadius {
		errs = append(errs, fmt.Errorf("effect.max_radius %v is below base_radius %v", e.MaxRadius, e.BaseRadius))
	}
	if e.SpeedMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("effect.speed_multiplier must be positive, got %v", e.SpeedMultiplier))
	}
	if e.MinSpawnSpeed <= 0 {
		errs = append(errs, fmt.Errorf("effect.min_spawn_speed must be positive, got %v", e.MinSpawnSpeed))
	}
	if e.SpawnInterval <= 0 {
		errs = append(errs, fmt.Errorf("effect.spawn_interval must be positive, got %v", e.SpawnInterval.Std()))
	}
	if e.InitialOpacity <= 0 || e.InitialOpacity > 1 {
		errs = append(errs, fmt.Errorf("effect.initial_opacity must be in (0, 1], got %v", e.InitialOpacity))
	}
	if e.TrailCapacity <= 0 {
		errs = append(errs, fmt.Errorf("effect.trail_capacity must be positive, got %d", e.TrailCapacity))
	}
	if e.DecayStep <= 0 || e.DecayStep > 1 {
		errs = append(errs, fmt.Errorf("effect.decay_step must be in (0, 1], got %v", e.DecayStep))
	}
	if _, err := shape.ParseKind(c.Mode.Shape); err != nil {
		errs = append(errs, fmt.Errorf("mode.shape: %w", err))
	}
	if c.Recording.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("recording.target_fps must be positive"))
	}
	if c.Render.FPS <= 0 {
		errs = append(errs, fmt.Errorf("render.fps must be positive"))
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		errs = append(errs, fmt.Errorf("render size must not be negative"))
	}
	if c.Render.Quality < 0 || c.Render.Quality > 1 {
		errs = append(errs, fmt.Errorf("render.quality must be in [0, 1]"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ShapeKind returns the parsed mode shape. Validate guarantees it parses;
// an unvalidated config falls back to a circle.
func (c *Config) ShapeKind() shape.Kind {
	k, err := shape.ParseKind(c.Mode.Shape)
	if err != nil {
		return shape.Circle
	}
	return k
}

// Duration is a time.Duration that reads as "16ms" style strings or as a
// number of milliseconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", b)
	}
	*d = Duration(ms * float64(time.Millisecond))
	return nil
}
