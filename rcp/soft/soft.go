// Package soft implements an RCP in software.
//
// Graphics tasks are executed by interpreting their display lists against
// the simulated RDRAM: geometry commands are transformed by the matrix
// stacks, triangles are rasterized with Gouraud shading and a 16-bit
// z-buffer, fill rectangles clear color and depth images.  Tasks run in the
// order they were submitted, on the goroutine calling [RCP.Run] or
// [RCP.Step].
package soft

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/clktmr/n64squares/gfx"
	"github.com/clktmr/n64squares/rcp"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/ucode"
)

var (
	ErrQueueFull = errors.New("rcp: task queue full")
	ErrLength    = errors.New("rcp: invalid display list length")
	ErrFault     = errors.New("rcp: task fault")
)

// Presenter shows a color image after a task with [gfx.SwapBuffer] finished.
type Presenter interface {
	Present(addr rdram.Addr) error
}

type Config struct {
	UCodes   ucode.Table
	Display  Presenter // optional
	Viewport image.Rectangle
	Queue    int // maximum number of submitted tasks
	Logger   *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		UCodes: ucode.Table{
			ucode.F3DEX:    ucode.NewUCode("F3DEX", 0x1000, nil, nil),
			ucode.F3DEXNoN: ucode.NewUCode("F3DEX.NoN", 0x1000, nil, nil),
		},
		Viewport: image.Rect(0, 0, 320, 240),
		Queue:    gfx.MaxGraphicsTasks,
		Logger:   slog.Default(),
	}
}

type task struct {
	start     rdram.Addr
	length    int
	uc        *ucode.UCode
	policy    gfx.Policy
	submitted time.Time
}

// Stats are counters accumulated over all executed tasks.
type Stats struct {
	Tasks, Faults uint64
	Commands      uint64
	Triangles     uint64
	Busy          time.Duration
}

type RCP struct {
	mem     *rdram.RDRAM
	cfg     Config
	log     *slog.Logger
	queue   *rcp.Queue[task]
	intr    rcp.Interrupts

	pending  atomic.Int32
	complete func(start rdram.Addr)
	done     chan struct{}

	// owned by the executing goroutine
	current  *task
	state    state
	faulted  error
	stats    Stats
	snapshot atomic.Pointer[Stats]
}

func New(mem *rdram.RDRAM, cfg Config) *RCP {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Queue < 1 {
		cfg.Queue = 1
	}
	if cfg.Viewport.Empty() {
		cfg.Viewport = DefaultConfig().Viewport
	}
	r := &RCP{
		mem:   mem,
		cfg:   cfg,
		log:   cfg.Logger.With("component", "rcp"),
		queue: rcp.NewQueue[task](cfg.Queue),
		done:  make(chan struct{}, 1),
	}
	r.snapshot.Store(&Stats{})
	r.intr.SetHandler(rcp.DisplayProcessor, r.fullSync)
	r.intr.SetHandler(rcp.VideoInterface, r.swap)
	r.intr.Enable(rcp.DisplayProcessor | rcp.VideoInterface)
	return r
}

// OnComplete sets the function called with the start address of each
// finished task.  It's called from the goroutine executing tasks, before the
// task stops counting as pending.
func (r *RCP) OnComplete(fn func(start rdram.Addr)) {
	r.complete = fn
}

// Submit queues a display list for execution.  It never blocks.
func (r *RCP) Submit(start rdram.Addr, length int, uc ucode.Selector, policy gfx.Policy) error {
	if length <= 0 || length%gbi.CommandSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrLength, length)
	}
	if _, err := r.mem.Slice(start, length); err != nil {
		return err
	}
	code, err := r.cfg.UCodes.Lookup(uc)
	if err != nil {
		return err
	}

	r.pending.Add(1)
	if !r.queue.Push(task{start, length, code, policy, time.Now()}) {
		r.pending.Add(-1)
		return ErrQueueFull
	}
	r.log.Debug("task submitted", "start", start, "bytes", length, "ucode", code.Name, "policy", policy)
	return nil
}

// Pending returns the number of submitted tasks that didn't complete yet.
func (r *RCP) Pending() int { return int(r.pending.Load()) }

// Stats returns a snapshot of the counters.
func (r *RCP) Stats() Stats { return *r.snapshot.Load() }

// Interrupts returns the interrupt lines raised by the RCP.  Handlers for the
// display processor and video interface are installed by New.
func (r *RCP) Interrupts() *rcp.Interrupts { return &r.intr }

// Run executes submitted tasks until ctx is canceled.
func (r *RCP) Run(ctx context.Context) error {
	r.log.Info("running", "ucodes", len(r.cfg.UCodes), "viewport", r.cfg.Viewport)

	for {
		for r.Step() {
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.queue.Ready():
		}
	}
}

// Step executes the oldest submitted task.  Returns false if there was none.
// Must not be called concurrently with Run.
func (r *RCP) Step() bool {
	t, ok := r.queue.Pop()
	if !ok {
		return false
	}
	r.execute(&t)
	return true
}

// Drain waits until no task is pending.  A Run or Step loop must be active on
// another goroutine.
func (r *RCP) Drain(ctx context.Context) error {
	for r.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

func (r *RCP) execute(t *task) {
	begin := time.Now()
	r.current = t
	r.faulted = nil
	r.state.reset(r.cfg.Viewport)

	err := r.run(t)
	if err != nil {
		r.faulted = err
		r.stats.Faults++
		r.log.Error("task fault", "start", t.start, "err", err)
	}
	if !r.state.synced {
		// Without full sync the display processor never signals the end of
		// the task.  Release it anyway so the CPU doesn't stall forever.
		if err == nil {
			r.log.Warn("task ended without full sync", "start", t.start)
		}
		r.intr.Raise(rcp.DisplayProcessor)
	}
	r.stats.Tasks++
	r.stats.Commands += uint64(r.state.commands)
	r.stats.Triangles += uint64(r.state.triangles)
	r.stats.Busy += time.Since(begin)
	stats := r.stats
	r.snapshot.Store(&stats)

	r.log.Debug("task done", "start", t.start, "commands", r.state.commands,
		"triangles", r.state.triangles, "latency", time.Since(t.submitted))
	r.current = nil
	r.finish(t)
}

// fullSync handles the display processor interrupt.  The color image is
// presented right away, the task is released by finish once the interpreter
// stopped reading its display list.
func (r *RCP) fullSync() {
	t := r.current
	if t.policy == gfx.SwapBuffer && r.faulted == nil {
		r.intr.Raise(rcp.VideoInterface)
	}
}

// finish hands t back to the CPU.  Nothing of t is read afterwards, so its
// display list may be reused as soon as the completion callback ran.
func (r *RCP) finish(t *task) {
	if r.complete != nil {
		r.complete(t.start)
	}
	r.pending.Add(-1)
	select {
	case r.done <- struct{}{}:
	default:
	}
}

// swap handles the video interface interrupt by showing the last color
// image.
func (r *RCP) swap() {
	if r.cfg.Display == nil {
		return
	}
	if err := r.cfg.Display.Present(r.state.color.addr); err != nil {
		r.log.Error("swap failed", "image", r.state.color.addr, "err", err)
	}
}
