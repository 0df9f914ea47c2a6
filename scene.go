package scrollreel

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const defaultCommandCap = 256

// DefaultWheelSpeed is the page distance scrolled per wheel notch.
const DefaultWheelSpeed = 60

// Scene is the top-level object that owns the page tree and its scroller. It
// implements ebiten.Game, feeding wheel and keyboard input into the scroller
// and drawing the page at the current offset.
type Scene struct {
	root     *Node
	scroller *Scroller

	// ClearColor fills the screen before drawing. Zero alpha skips the fill.
	ClearColor Color
	// WheelSpeed scales mouse wheel deltas into page distance.
	WheelSpeed float64
	// KeyStep is the distance scrolled per arrow key press.
	KeyStep float64
	// ScreenshotDir receives PNGs queued with Screenshot.
	ScreenshotDir string

	debug  bool
	logger *slog.Logger

	commands   []RenderCommand
	cullBounds Rect
	whitePixel *ebiten.Image
	hud        *hud

	screenshotQueue []string

	injectQueue []syntheticSignal
	testRunner  *TestRunner
	updateFunc  func() error

	// readInput returns the scroll delta produced by the user this frame.
	// nil disables real input.
	readInput func(s *Scene) float64
}

// NewScene creates a scene with a root container and a scroller for a
// viewport of the given size.
func NewScene(width, height float64) *Scene {
	return &Scene{
		root:          NewContainer("root"),
		scroller:      NewScroller(width, height),
		WheelSpeed:    DefaultWheelSpeed,
		KeyStep:       DefaultWheelSpeed,
		ScreenshotDir: DefaultScreenshotDir,
		logger:        slog.New(slog.DiscardHandler),
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		readInput:     ebitenScrollInput,
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Scroller returns the scene's scroller, the signal source timelines attach to.
func (s *Scene) Scroller() *Scroller {
	return s.scroller
}

// SetUpdateFunc sets a callback run at the end of every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetLogger sets the logger used for debug stats.
func (s *Scene) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetDebugMode enables per-frame stats at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Update advances one frame: scripted steps, then injected or real input,
// then any smooth scroll, then world transforms and the update callback.
func (s *Scene) Update() error {
	return s.step(float32(1.0 / float64(ebiten.TPS())))
}

func (s *Scene) step(dt float32) error {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if !s.processInjectedSignal() && s.readInput != nil {
		if d := s.readInput(s); d != 0 {
			s.scroller.ScrollBy(d)
		}
	}
	s.scroller.update(dt)
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	if s.hud != nil {
		s.hud.update(float64(dt), s.scroller)
	}
	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// ebitenScrollInput reads the mouse wheel and the arrow and page keys.
func ebitenScrollInput(s *Scene) float64 {
	_, wy := ebiten.Wheel()
	d := -wy * s.WheelSpeed
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		d += s.KeyStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		d -= s.KeyStep
	}
	_, vh := s.scroller.Viewport()
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		d += vh
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		d -= vh
	}
	return d
}

// Draw renders the page at the current scroll offset.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.buildCommands()
	s.submit(screen)
	if s.hud != nil {
		s.hud.draw(screen)
	}
	s.flushScreenshots(screen)
	if s.debug {
		s.logger.Debug("frame",
			"offset", s.scroller.ScrollOffset(),
			"commands", len(s.commands),
		)
	}
}

// Layout reports the outside size as the screen size and forwards changes
// to the scroller as resize signals.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.scroller.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// SetShowHUD toggles the FPS and scroll offset overlay.
func (s *Scene) SetShowHUD(show bool) {
	if !show {
		s.hud = nil
		return
	}
	if s.hud == nil {
		s.hud = &hud{}
	}
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws the FPS and scroll offset overlay.
	ShowFPS bool
}

// Run opens a window and runs the scene until it is closed.
func Run(scene *Scene, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		vw, vh := scene.scroller.Viewport()
		w, h = int(math.Round(vw)), int(math.Round(vh))
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.ShowFPS {
		scene.SetShowHUD(true)
	}
	if err := ebiten.RunGame(scene); err != nil {
		return fmt.Errorf("run scene: %w", err)
	}
	return nil
}
