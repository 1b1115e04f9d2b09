// Package stage drives the demo: once per frame it claims a graphics task,
// encodes the scene into it, submits it and advances the scene.
package stage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/gfx"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/scene"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

type Config struct {
	Screen     image.Rectangle
	Background color.Color
	Camera     gfx.Camera
	Lens       gfx.Lens

	Tasks    int // number of graphics tasks
	Commands int // display list capacity per task

	UCode  ucode.Selector
	Policy gfx.Policy

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Screen:     image.Rect(0, 0, 320, 240),
		Background: colornames.Black,
		Camera: gfx.Camera{
			Eye:    mgl32.Vec3{-200, -200, -200},
			Target: mgl32.Vec3{0, 0, 0},
			Up:     mgl32.Vec3{0, 1, 0},
		},
		Lens: gfx.Lens{
			FovY: 45, Aspect: 320.0 / 240.0,
			Near: 10, Far: 1000, Scale: 1,
		},
		Tasks:    gfx.MaxGraphicsTasks,
		Commands: gfx.MaxDisplayListCommands,
		UCode:    ucode.F3DEX,
		Policy:   gfx.SwapBuffer,
		Logger:   slog.Default(),
	}
}

// ParseColor looks up a color by its SVG name, e.g. "cornflowerblue".
func ParseColor(name string) (color.Color, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("stage: unknown color %q", name)
	}
	return c, nil
}

// Target provides the color image the next frame is rendered into.
type Target interface {
	Back() rdram.Addr
}

type Stage struct {
	cfg Config
	log *slog.Logger

	pool      *gfx.Pool
	encoder   *gfx.Encoder
	submitter gfx.Submitter

	scene  *scene.Scene
	input  controller.Controller
	source controller.Source

	frames, skipped int
}

// New allocates the graphics tasks, the setup display lists, the z-buffer and
// the mesh in mem.
func New(mem *rdram.RDRAM, cfg Config, target Target, submitter gfx.Submitter, source controller.Source) (*Stage, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	pool, err := gfx.NewPool(mem, cfg.Tasks, cfg.Commands)
	if err != nil {
		return nil, err
	}
	setup, err := gfx.InstallSetup(mem)
	if err != nil {
		return nil, err
	}
	zbuf, err := mem.Alloc(cfg.Screen.Dx()*cfg.Screen.Dy()*2, 64)
	if err != nil {
		return nil, err
	}
	mesh, err := mem.Alloc(len(scene.Square)*gbi.VtxSize, rdram.CacheLineSize)
	if err != nil {
		return nil, err
	}
	if err := gbi.StoreVertices(mem, mesh, scene.Square[:]); err != nil {
		return nil, err
	}

	s := &Stage{
		cfg:  cfg,
		log:  cfg.Logger.With("component", "stage"),
		pool: pool,
		encoder: &gfx.Encoder{
			Setup:        setup,
			Camera:       cfg.Camera,
			Lens:         cfg.Lens,
			Screen:       cfg.Screen,
			Background:   cfg.Background,
			DepthImage:   zbuf,
			ColorImage:   target.Back,
			Mesh:         mesh,
			MeshVertices: uint8(len(scene.Square)),
		},
		submitter: submitter,
		scene:     scene.New(),
		source:    source,
	}
	return s, nil
}

// Frame is called once per display refresh with the number of tasks the RCP
// didn't finish yet.  A new frame is only rendered if the RCP is idle, the
// scene advances either way.
//
// Frame panics if the display list doesn't fit its buffer.
func (s *Stage) Frame(pending int) {
	if pending < 1 {
		s.render()
	}
	s.input.Poll(s.source)
	s.scene.Update(&s.input)
}

func (s *Stage) render() {
	task, err := s.pool.Next()
	if errors.Is(err, gfx.ErrSlotInFlight) {
		s.skipped++
		s.log.Warn("frame skipped", "err", err)
		return
	} else if err != nil {
		panic(err)
	}

	start, n, err := s.encoder.Encode(task, s.scene.Objects)
	if err != nil {
		panic(err)
	}

	s.pool.Submitted(task)
	err = s.submitter.Submit(start, n*gbi.CommandSize, s.cfg.UCode, s.cfg.Policy)
	if err != nil {
		s.pool.Complete(start)
		s.skipped++
		s.log.Error("submit failed", "slot", task.Index, "err", err)
		return
	}
	s.frames++
	s.log.Debug("frame submitted", "slot", task.Index, "start", start, "commands", n)
}

// Complete must be called when the RCP finished the task starting at addr.
func (s *Stage) Complete(addr rdram.Addr) {
	if !s.pool.Complete(addr) {
		s.log.Warn("completion of unknown task", "start", addr)
	}
}

func (s *Stage) Scene() *scene.Scene { return s.scene }

func (s *Stage) Pool() *gfx.Pool { return s.pool }

func (s *Stage) Encoder() *gfx.Encoder { return s.encoder }

// Frames returns the number of submitted frames.
func (s *Stage) Frames() int { return s.frames }

// Skipped returns the number of frames that couldn't be submitted.
func (s *Stage) Skipped() int { return s.skipped }
