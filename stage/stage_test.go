package stage_test

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/clktmr/n64squares/debug"
	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/framebuffer"
	"github.com/clktmr/n64squares/gfx"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/soft"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/scene"
	"github.com/clktmr/n64squares/stage"
)

type submission struct {
	start  rdram.Addr
	length int
	uc     ucode.Selector
	policy gfx.Policy
}

// recorder is a Submitter that optionally completes tasks right away.
type recorder struct {
	tasks    []submission
	complete func(rdram.Addr)
	err      error
}

func (r *recorder) Submit(start rdram.Addr, length int, uc ucode.Selector, policy gfx.Policy) error {
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, submission{start, length, uc, policy})
	if r.complete != nil {
		r.complete(start)
	}
	return nil
}

type backbuffer rdram.Addr

func (b backbuffer) Back() rdram.Addr { return rdram.Addr(b) }

func quietConfig() stage.Config {
	cfg := stage.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func newStage(t *testing.T, cfg stage.Config, sub *recorder, src controller.Source) *stage.Stage {
	t.Helper()
	mem := rdram.New(rdram.DefaultSize)
	cbuf, err := mem.Alloc(cfg.Screen.Dx()*cfg.Screen.Dy()*2, 64)
	if err != nil {
		t.Fatal(err)
	}
	s, err := stage.New(mem, cfg, backbuffer(cbuf), sub, src)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func rotations(s *stage.Stage) (r []int) {
	for _, o := range s.Scene().Objects {
		r = append(r, o.Rotation)
	}
	return
}

func TestFrameThrottle(t *testing.T) {
	sub := &recorder{}
	s := newStage(t, quietConfig(), sub, &controller.Script{})

	s.Frame(1)
	if len(sub.tasks) != 0 {
		t.Fatalf("submitted while busy")
	}
	if got := rotations(s); !slices.Equal(got, []int{359, 19, 39, 39, 39}) {
		t.Errorf("scene not advanced while busy: %v", got)
	}

	s.Frame(0)
	if len(sub.tasks) != 1 {
		t.Fatalf("%d submissions, expected 1", len(sub.tasks))
	}
	task := sub.tasks[0]
	objects := len(s.Scene().Objects)
	if task.length != (20+9*objects)*gbi.CommandSize {
		t.Errorf("submitted %d bytes", task.length)
	}
	if task.uc != ucode.F3DEX || task.policy != gfx.SwapBuffer {
		t.Errorf("submitted with %v, %v", task.uc, task.policy)
	}
	if s.Frames() != 1 {
		t.Errorf("%d frames", s.Frames())
	}
}

func TestFrameAlternates(t *testing.T) {
	sub := &recorder{}
	s := newStage(t, quietConfig(), sub, &controller.Script{})
	sub.complete = s.Complete

	for range 6 {
		s.Frame(0)
	}
	if len(sub.tasks) != 6 {
		t.Fatalf("%d submissions", len(sub.tasks))
	}
	for i := 1; i < len(sub.tasks); i++ {
		if sub.tasks[i].start == sub.tasks[i-1].start {
			t.Errorf("frame %d reuses the previous display list", i)
		}
	}
	if sub.tasks[0].start != sub.tasks[2].start {
		t.Error("display lists not used round-robin")
	}
	if s.Pool().InFlight() != 0 {
		t.Errorf("%d tasks in flight", s.Pool().InFlight())
	}
}

func TestFrameSlotInFlight(t *testing.T) {
	sub := &recorder{}
	s := newStage(t, quietConfig(), sub, &controller.Script{})

	// Tasks never complete, the third frame finds its slot in flight.
	s.Frame(0)
	s.Frame(0)
	s.Frame(0)
	if len(sub.tasks) != 2 {
		t.Errorf("%d submissions, expected 2", len(sub.tasks))
	}
	if s.Skipped() != 1 {
		t.Errorf("%d skipped frames", s.Skipped())
	}

	s.Complete(sub.tasks[0].start)
	s.Frame(0)
	if len(sub.tasks) != 3 || sub.tasks[2].start != sub.tasks[0].start {
		t.Error("completed slot not reused")
	}
}

func TestFrameSubmitError(t *testing.T) {
	sub := &recorder{err: soft.ErrQueueFull}
	s := newStage(t, quietConfig(), sub, &controller.Script{})
	s.Frame(0)
	if s.Pool().InFlight() != 0 {
		t.Error("failed submission left the slot in flight")
	}
	if s.Skipped() != 1 || s.Frames() != 0 {
		t.Errorf("frames %d, skipped %d", s.Frames(), s.Skipped())
	}
}

func TestFrameOverrun(t *testing.T) {
	cfg := quietConfig()
	cfg.Commands = 20 + 9*len(scene.New().Objects) // exactly full is an overrun
	sub := &recorder{}
	s := newStage(t, cfg, sub, &controller.Script{})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("overrun didn't panic")
		}
		if err, ok := r.(error); !debug.Enabled && (!ok || !errors.Is(err, gfx.ErrOverrun)) {
			t.Errorf("panic with %v, expected overrun", r)
		}
		if len(sub.tasks) != 0 {
			t.Error("overrun display list submitted")
		}
	}()
	s.Frame(0)
}

func TestFrameToggle(t *testing.T) {
	pressed := controller.State{Down: scene.ToggleButton, Plugged: true}
	src := &controller.Script{States: []controller.State{pressed, pressed, {Plugged: true}}}
	s := newStage(t, quietConfig(), &recorder{}, src)

	for range 3 {
		s.Frame(1)
	}
	if got := rotations(s); !slices.Equal(got, []int{3, 23, 43, 43, 43}) {
		t.Errorf("rotations %v", got)
	}
}

// Renders a frame with the software RCP and checks that squares end up in the
// presented image.
func TestFrameRender(t *testing.T) {
	cfg := quietConfig()
	mem := rdram.New(rdram.DefaultSize)
	fb, err := framebuffer.NewFramebuffer(mem, cfg.Screen)
	if err != nil {
		t.Fatal(err)
	}
	rcfg := soft.DefaultConfig()
	rcfg.Display = fb
	rcfg.Logger = cfg.Logger
	rcp := soft.New(mem, rcfg)

	s, err := stage.New(mem, cfg, fb, rcp, &controller.Script{})
	if err != nil {
		t.Fatal(err)
	}
	rcp.OnComplete(s.Complete)

	for i := range 4 {
		back := fb.Back()
		s.Frame(rcp.Pending())
		if !rcp.Step() {
			t.Fatalf("frame %d: nothing submitted", i)
		}
		if fb.Front() != back {
			t.Fatalf("frame %d: not presented", i)
		}
	}
	if st := rcp.Stats(); st.Faults != 0 || st.Triangles == 0 {
		t.Errorf("stats %+v", st)
	}

	img := fb.Image(fb.Front())
	background := gbi.PackRGBA5551(0, 0, 0, 0xff)
	center := image.Pt(cfg.Screen.Dx()/2, cfg.Screen.Dy()/2)
	if img.Raw(center.X, center.Y) == background {
		t.Error("no square at the center of the screen")
	}
	if img.Raw(0, 0) != background {
		t.Errorf("corner %#04x, expected background", img.Raw(0, 0))
	}
}

func TestParseColor(t *testing.T) {
	c, err := stage.ParseColor("CornflowerBlue")
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := c.RGBA(); r>>8 != 100 || g>>8 != 149 || b>>8 != 237 {
		t.Errorf("got %v", c)
	}
	if _, err := stage.ParseColor("notacolor"); err == nil {
		t.Error("expected error for unknown color")
	}
}
