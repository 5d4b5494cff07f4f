package window

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/vedantwpatil/cursor-reveal/internal/config"
	"github.com/vedantwpatil/cursor-reveal/internal/loop"
	"github.com/vedantwpatil/cursor-reveal/internal/metrics"
	"github.com/vedantwpatil/cursor-reveal/internal/playback"
	"github.com/vedantwpatil/cursor-reveal/internal/render"
	"github.com/vedantwpatil/cursor-reveal/internal/scene"
	"github.com/vedantwpatil/cursor-reveal/internal/shape"
	"github.com/vedantwpatil/cursor-reveal/internal/tracking"
	"github.com/vedantwpatil/cursor-reveal/internal/video"
)

var shapeKeys = [...]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// Game hosts the reveal effect in a desktop window. ebiten calls Update and
// Draw on one goroutine; Draw drives the render loop once per refresh.
type Game struct {
	ctx    context.Context
	loop   *loop.Loop
	scene  *scene.Scene
	canvas *render.Canvas
	logger *zap.Logger

	machine *playback.Machine

	start    time.Time
	width    int
	height   int
	presence tracking.Presence
	touches  []ebiten.TouchID
}

// New creates the game. src is sampled every frame; it is usually a
// video.Slot that is filled once the file opens.
func New(ctx context.Context, cfg *config.Config, src render.VideoSource, frames *metrics.Frames, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Game{
		ctx:    ctx,
		canvas: render.NewCanvas(cfg.Window.Width, cfg.Window.Height),
		logger: logger,
		start:  time.Now(),
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
	}
	g.scene = scene.New(cfg, g.canvas, src, frames, logger)
	g.machine = playback.NewMachine(nil, logger)
	g.loop = loop.New(func(time.Duration) { g.scene.Render() }, logger)
	return g
}

// ApplyConfig takes the mode section of a reloaded config.
func (g *Game) ApplyConfig(cfg *config.Config) {
	g.loop.Post(func() { g.scene.Apply(cfg) })
}

// AttachPlayer hands over an opened video and attempts autoplay.
func (g *Game) AttachPlayer(p *video.Player) {
	g.loop.Post(func() {
		state := g.machine.Attach(g.ctx, p)
		g.logger.Info("video metadata ready", zap.Stringer("playback", state))
	})
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	now := time.Since(g.start)

	g.pollPointer(now)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 {
		g.loop.Post(func() { g.machine.GestureObserved(g.ctx) })
	}

	for i, key := range shapeKeys {
		if inpututil.IsKeyJustPressed(key) {
			kind := shape.Kinds[i]
			g.loop.Post(func() { g.scene.Modes.SetShape(kind) })
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.loop.Post(func() { g.scene.Modes.ToggleMask() })
	}
	return nil
}

// pollPointer prefers the first active touch; without touches the mouse
// cursor is used while it is over the window.
func (g *Game) pollPointer(now time.Duration) {
	var (
		x, y   int
		inside bool
	)
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	if len(g.touches) > 0 {
		x, y = ebiten.TouchPosition(g.touches[0])
		inside = true
	} else {
		x, y = ebiten.CursorPosition()
		inside = image.Pt(x, y).In(image.Rect(0, 0, g.width, g.height))
	}

	ev, ok := g.presence.Sample(float64(x), float64(y), inside, now)
	if !ok {
		return
	}
	g.loop.Post(func() { g.scene.Handle(ev) })
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.loop.Tick(time.Since(g.start))

	img := g.canvas.Image()
	if screen.Bounds().Size() != img.Rect.Size() {
		// a resize is queued for the next tick
		return
	}
	screen.WritePixels(img.Pix)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.loop.Post(func() { g.canvas.Resize(outsideWidth, outsideHeight) })
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(g *Game, cfg config.WindowConfig) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	return ebiten.RunGame(g)
}
