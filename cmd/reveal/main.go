package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/logger"
	"github.com/vedantwpatil/cursor-reveal/internal/metrics"
	"github.com/vedantwpatil/cursor-reveal/internal/recording"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking/capture"
	"github.com/vedantwpatil/cursor-reveal/internal/video"
	"github.com/vedantwpatil/cursor-reveal/internal/window"
)

const usage = `usage: reveal <command> [flags]

commands:
  play    show the reveal effect over a looping video in a window
  record  capture global pointer motion into a track file
  render  composite a recorded track over a video into a new video file
`

type Application struct {
	config     *config.Config
	configPath string
	logger     *zap.Logger
	session    uuid.UUID
	registry   *prometheus.Registry
	frames     *metrics.Frames
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewApplication(configPath string) (*Application, error) {
	cfg := config.NewConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	session := uuid.New()
	zl, err := logger.New(logger.Config{
		Environment: cfg.Log.Environment,
		LogLevel:    cfg.Log.Level,
		Session:     session.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		config:     cfg,
		configPath: configPath,
		logger:     zl,
		session:    session,
		registry:   registry,
		frames:     metrics.NewFrames(registry),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start installs signal handling and the optional metrics endpoint.
func (app *Application) Start() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go app.handleSignals(sigChan)

	if addr := app.config.Metrics.Address; addr != "" {
		srv := metrics.NewServer(addr, app.registry)
		go func() {
			app.logger.Info("serving metrics", zap.String("address", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		go func() {
			<-app.ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
}

func (app *Application) handleSignals(sigChan chan os.Signal) {
	for sig := range sigChan {
		app.logger.Info("received signal", zap.Stringer("signal", sig))
		app.cancel()
	}
}

func (app *Application) cleanup() {
	app.cancel()
	_ = app.logger.Sync()
}

func (app *Application) play(videoPath string) error {
	slot := &video.Slot{}
	game := window.New(app.ctx, app.config, slot, app.frames, app.logger)

	if app.configPath != "" {
		go func() {
			if err := config.Watch(app.ctx, app.configPath, game.ApplyConfig, app.logger); err != nil {
				app.logger.Warn("config hot reload disabled", zap.Error(err))
			}
		}()
	}

	players := make(chan *video.Player, 1)
	go func() {
		file, err := video.OpenWithRetry(app.ctx, videoPath, app.config.Playback.OpenRetryMaxElapsed.Std(), app.logger)
		if err != nil {
			app.logger.Error("giving up on video, rendering without it", zap.String("path", videoPath), zap.Error(err))
			return
		}
		player := video.NewPlayer(file, video.PlayerOptions{RequireGesture: app.config.Playback.RequireGesture}, app.logger)
		players <- player
		slot.Set(player)
		game.AttachPlayer(player)
	}()

	err := window.Run(game, app.config.Window)

	app.cancel()
	select {
	case p := <-players:
		p.Close()
	default:
	}
	return err
}

func (app *Application) record(outPath string, duration time.Duration) error {
	base := strings.TrimSuffix(filepath.Base(outPath), filepath.Ext(outPath))
	app.config.Recording.OutputDir = filepath.Dir(outPath)

	recorder := recording.NewRecorder(app.config, capture.New(app.logger), app.logger)
	if err := recorder.Start(base); err != nil {
		return err
	}
	fmt.Println("Recording pointer motion... Press Ctrl+C to stop.")

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}
	select {
	case <-app.ctx.Done():
	case <-timeout:
	}

	if err := recorder.Stop(); err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}
	track := recorder.GetTrack()
	fmt.Printf("Saved %d pointer events (%v) to %s\n",
		len(track.Events), track.Duration().Round(time.Millisecond), recorder.GetOutputPath())
	return nil
}

func (app *Application) render(job video.Job) error {
	pipeline := video.NewPipeline(app.config, app.frames, app.logger)
	pipeline.SetProgress(video.NewProgressBar("Rendering"))

	fmt.Printf("Input: %s\n", job.VideoPath)
	fmt.Printf("Track: %s\n", job.TrackPath)
	fmt.Printf("Output: %s\n", job.OutputPath)

	if err := pipeline.Process(app.ctx, job); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	fmt.Printf("Rendered video saved to: %s\n", job.OutputPath)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", "", "path to a JSON config file")

	switch cmd {
	case "play":
		videoPath := fs.String("video", "", "video file to reveal")
		width := fs.Int("width", 0, "initial window width")
		height := fs.Int("height", 0, "initial window height")
		fs.Parse(args)
		if *videoPath == "" {
			return errors.New("play: -video is required")
		}
		app, err := NewApplication(*configPath)
		if err != nil {
			return err
		}
		defer app.cleanup()
		if *width > 0 && *height > 0 {
			app.config.Window.Width, app.config.Window.Height = *width, *height
		}
		app.Start()
		return app.play(*videoPath)

	case "record":
		out := fs.String("out", "", "track file to write (.json)")
		duration := fs.Duration("duration", 0, "stop automatically after this long")
		fs.Parse(args)
		if *out == "" {
			return errors.New("record: -out is required")
		}
		app, err := NewApplication(*configPath)
		if err != nil {
			return err
		}
		defer app.cleanup()
		app.Start()
		return app.record(*out, *duration)

	case "render":
		videoPath := fs.String("video", "", "background video")
		trackPath := fs.String("track", "", "recorded pointer track")
		out := fs.String("out", "", "output video file")
		fps := fs.Float64("fps", 0, "output frame rate")
		fs.Parse(args)
		if *videoPath == "" || *trackPath == "" || *out == "" {
			return errors.New("render: -video, -track and -out are required")
		}
		app, err := NewApplication(*configPath)
		if err != nil {
			return err
		}
		defer app.cleanup()
		if *fps > 0 {
			app.config.Render.FPS = *fps
		}
		app.Start()
		return app.render(video.Job{VideoPath: *videoPath, TrackPath: *trackPath, OutputPath: *out})

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
