// Package window shows the demo in a desktop window.  Each ebiten tick stands
// in for a vertical blank, the keyboard stands in for the controller.
package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/clktmr/n64squares/drivers/console"
	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/framebuffer"
	"github.com/clktmr/n64squares/rcp/soft"

	"github.com/embeddedgo/display/pix"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Keys maps keyboard keys to controller buttons.
var Keys = map[ebiten.Key]controller.ButtonMask{
	ebiten.KeyA:          controller.ButtonA,
	ebiten.KeySpace:      controller.ButtonA,
	ebiten.KeyB:          controller.ButtonB,
	ebiten.KeyZ:          controller.ButtonZ,
	ebiten.KeyEnter:      controller.ButtonStart,
	ebiten.KeyArrowUp:    controller.ButtonDUp,
	ebiten.KeyArrowDown:  controller.ButtonDDown,
	ebiten.KeyArrowLeft:  controller.ButtonDLeft,
	ebiten.KeyArrowRight: controller.ButtonDRight,
	ebiten.KeyQ:          controller.ButtonL,
	ebiten.KeyE:          controller.ButtonR,
	ebiten.KeyI:          controller.ButtonCUp,
	ebiten.KeyK:          controller.ButtonCDown,
	ebiten.KeyJ:          controller.ButtonCLeft,
	ebiten.KeyL:          controller.ButtonCRight,
}

// Toggles the console overlay.
const ConsoleKey = ebiten.KeyF1

type Config struct {
	Title string
	Scale int
	Hz    int
	HUD   bool // show pending tasks and frame rate

	// Input receives the keyboard state, a new Latch is used if nil.
	Input *controller.Latch

	// Console receives log output and is drawn on top of the frame while
	// enabled with ConsoleKey.
	Console *console.Console

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{Title: "squares", Scale: 2, Hz: 60, HUD: true}
}

type Platform struct {
	cfg   Config
	log   *slog.Logger
	rcp   *soft.RCP
	fb    *framebuffer.Framebuffer
	input *controller.Latch

	frame   func(pending int)
	output  bool
	console bool
	screen  *ebiten.Image
	hud     *pix.Area
	pad     controller.Controller
}

func New(rcp *soft.RCP, fb *framebuffer.Framebuffer, cfg Config) *Platform {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Input == nil {
		cfg.Input = &controller.Latch{}
	}
	cfg.Scale = max(cfg.Scale, 1)
	return &Platform{
		cfg: cfg, log: cfg.Logger.With("component", "window"),
		rcp: rcp, fb: fb, input: cfg.Input,
	}
}

// Source returns the keyboard as a controller.
func (p *Platform) Source() controller.Source { return p.input }

func (p *Platform) InitDisplay() error {
	bounds := p.fb.Bounds()
	ebiten.SetWindowTitle(p.cfg.Title)
	ebiten.SetWindowSize(bounds.Dx()*p.cfg.Scale, bounds.Dy()*p.cfg.Scale)
	if p.cfg.Hz > 0 {
		ebiten.SetTPS(p.cfg.Hz)
	}
	p.screen = ebiten.NewImage(bounds.Dx(), bounds.Dy())

	disp := pix.NewDisplay(p.fb)
	p.hud = disp.NewArea(image.Rect(bounds.Min.X, bounds.Max.Y-4, bounds.Max.X, bounds.Max.Y))
	p.log.Info("display initialized", "size", bounds.Size(), "scale", p.cfg.Scale, "hz", p.cfg.Hz)
	return nil
}

func (p *Platform) SetFrameCallback(fn func(pending int)) { p.frame = fn }

func (p *Platform) EnableOutput() { p.output = true }

// Run executes RCP tasks in the background and blocks until the window is
// closed or ctx is canceled.
func (p *Platform) Run(ctx context.Context) error {
	if p.frame == nil {
		return errors.New("window: no frame callback")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.rcp.Run(ctx) }()

	err := ebiten.RunGame(&game{p: p, ctx: ctx})
	cancel()
	if rerr := <-done; err == nil && rerr != nil && !errors.Is(rerr, context.Canceled) {
		err = rerr
	}
	return err
}

// game implements ebiten.Game.
type game struct {
	p   *Platform
	ctx context.Context
}

func (g *game) Update() error {
	p := g.p
	if g.ctx.Err() != nil {
		return g.ctx.Err()
	}
	if inpututil.IsKeyJustPressed(ConsoleKey) && p.cfg.Console != nil {
		p.console = !p.console
	}

	st := controller.State{Plugged: true}
	for key, button := range Keys {
		if ebiten.IsKeyPressed(key) {
			st.Down |= button
		}
	}
	p.input.Set(st)
	if p.console {
		p.pad.Poll(p.input)
		p.cfg.Console.Update(&p.pad)
	}

	p.frame(p.rcp.Pending())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	p := g.p
	if !p.output {
		screen.Fill(color.Black)
		return
	}

	if p.cfg.HUD {
		p.drawHUD()
	}
	img := p.fb.Snapshot()
	if p.console {
		r := img.Bounds()
		r.Max.Y = r.Min.Y + r.Dy()/2
		p.cfg.Console.Draw(img, r)
	}
	p.screen.WritePixels(img.Pix)
	screen.DrawImage(p.screen, nil)

	if p.cfg.HUD {
		ebiten.SetWindowTitle(fmt.Sprintf("%s (%.1f fps, %d pending)",
			p.cfg.Title, p.fb.FPS(), p.rcp.Pending()))
	}
}

// drawHUD draws a bar at the bottom of the front buffer.  Its length is the
// frame rate relative to the refresh rate, red while tasks are pending.
func (p *Platform) drawHUD() {
	r := p.hud.Bounds()
	p.hud.SetColor(color.Black)
	p.hud.Fill(r)

	hz := float32(max(p.cfg.Hz, 1))
	r.Max.X = r.Min.X + int(min(p.fb.FPS()/hz, 1)*float32(r.Dx()))
	if p.rcp.Pending() > 0 {
		p.hud.SetColor(color.RGBA{0xff, 0, 0, 0xff})
	} else {
		p.hud.SetColor(color.RGBA{0, 0xff, 0, 0xff})
	}
	p.hud.Fill(r)
	p.hud.Flush()
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.p.fb.Bounds()
	return b.Dx(), b.Dy()
}
