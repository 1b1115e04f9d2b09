package gfx

import (
	"fmt"
	"sync"

	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Number of graphics tasks, one is built while the other is rendered.
	MaxGraphicsTasks = 2
	// Maximum length of the display list of one task.
	MaxDisplayListCommands = 2048
	// Number of object transforms a task can hold.
	MaxObjects = 10
)

type SlotState uint8

const (
	Idle     SlotState = iota // free for the next frame
	Building                  // being encoded by the CPU
	InFlight                  // submitted, owned by the RCP
)

func (s SlotState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case InFlight:
		return "in flight"
	}
	return fmt.Sprintf("SlotState(%d)", uint8(s))
}

// Task is a display list together with the per frame data it references.
// The matrices are stored in RDRAM next to the display list, so they stay
// valid until the RCP finished the task.
type Task struct {
	Index int
	DL    *DisplayList

	Projection rdram.Addr
	ModelView  rdram.Addr
	Objects    [MaxObjects]rdram.Addr

	mem   *rdram.RDRAM
	state SlotState
}

func newTask(mem *rdram.RDRAM, index, capacity int) (*Task, error) {
	dl, err := NewDisplayList(mem, capacity)
	if err != nil {
		return nil, err
	}
	t := &Task{Index: index, DL: dl, mem: mem}

	addr, err := mem.Alloc((2+MaxObjects)*gbi.MtxSize, rdram.CacheLineSize)
	if err != nil {
		return nil, err
	}
	t.Projection = addr
	t.ModelView = addr + gbi.MtxSize
	for i := range t.Objects {
		t.Objects[i] = addr + rdram.Addr((2+i)*gbi.MtxSize)
	}
	return t, nil
}

// StoreMatrix converts m and writes it to one of the task's matrix slots.
func (t *Task) StoreMatrix(addr rdram.Addr, m mgl32.Mat4) error {
	p := gbi.NewMtx(m)
	return p.Store(t.mem, addr)
}

// Pool rotates through a fixed set of tasks.  The pool isn't safe for
// concurrent use, except for Complete which is meant to be called from the
// RCP's completion handler.
type Pool struct {
	mu    sync.Mutex
	tasks []*Task
	cur   int
}

// NewPool allocates n tasks with display lists of the given capacity.
func NewPool(mem *rdram.RDRAM, n, capacity int) (*Pool, error) {
	if n < 1 || capacity < 1 {
		return nil, fmt.Errorf("gfx: invalid pool size %d with capacity %d", n, capacity)
	}
	p := &Pool{tasks: make([]*Task, n)}
	for i := range p.tasks {
		t, err := newTask(mem, i, capacity)
		if err != nil {
			return nil, err
		}
		p.tasks[i] = t
	}
	return p, nil
}

func (p *Pool) Len() int { return len(p.tasks) }

// Index returns the slot of the task returned by the last call to Next.
func (p *Pool) Index() int { return p.cur }

// Task returns the task in slot i.
func (p *Pool) Task(i int) *Task { return p.tasks[i] }

// Next switches to the next task and rewinds its display list.  If the task
// wasn't completed by the RCP yet, ErrSlotInFlight is returned and the
// current slot doesn't change.
func (p *Pool) Next() (*Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := (p.cur + 1) % len(p.tasks)
	t := p.tasks[next]
	if t.state == InFlight {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotInFlight, next)
	}
	p.cur = next
	t.state = Building
	t.DL.Reset()
	return t, nil
}

// Submitted marks the task as owned by the RCP.
func (p *Pool) Submitted(t *Task) {
	p.mu.Lock()
	t.state = InFlight
	p.mu.Unlock()
}

// Complete releases the task whose display list starts at addr.  Returns
// false if no task in flight matches.
func (p *Pool) Complete(addr rdram.Addr) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tasks {
		if t.DL.Addr() == addr && t.state == InFlight {
			t.state = Idle
			return true
		}
	}
	return false
}

// State returns the state of slot i.
func (p *Pool) State(i int) SlotState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks[i].state
}

// InFlight returns the number of tasks owned by the RCP.
func (p *Pool) InFlight() (n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tasks {
		if t.state == InFlight {
			n++
		}
	}
	return
}
