package rcp

import (
	"fmt"
	"sync"
)

const interruptCount = 6

// Interrupts dispatches raised interrupts to their handlers.  Handlers run on
// the goroutine calling Raise, which plays the role of the interrupt context.
// The zero value has all interrupts disabled.
type Interrupts struct {
	mu       sync.Mutex
	handlers [interruptCount]func()
	mask     InterruptFlag
	count    [interruptCount]uint64
}

func irqIndex(flag InterruptFlag) int {
	irq := 0
	for f := SignalProcessor; f != InterruptFlagLast; f = f << 1 {
		if flag&f != 0 {
			return irq
		}
		irq += 1
	}
	return -1
}

// SetHandler registers handler for the lowest interrupt set in flag.
func (p *Interrupts) SetHandler(flag InterruptFlag, handler func()) {
	irq := irqIndex(flag)
	if irq < 0 {
		panic(fmt.Sprintf("invalid interrupt %v", flag))
	}
	p.mu.Lock()
	p.handlers[irq] = handler
	p.mu.Unlock()
}

func (p *Interrupts) Handler(flag InterruptFlag) func() {
	irq := irqIndex(flag)
	if irq < 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handlers[irq]
}

func (p *Interrupts) Enable(mask InterruptFlag) {
	p.mu.Lock()
	p.mask |= mask
	p.mu.Unlock()
}

func (p *Interrupts) Disable(mask InterruptFlag) {
	p.mu.Lock()
	p.mask &^= mask
	p.mu.Unlock()
}

// Raise calls the handlers of all enabled interrupts in pending.  Disabled
// interrupts are dropped.  Raising an enabled interrupt without handler
// panics, like it would on the console.
func (p *Interrupts) Raise(pending InterruptFlag) {
	p.mu.Lock()
	pending &= p.mask
	var run [interruptCount]func()
	irq := 0
	for flag := SignalProcessor; flag != InterruptFlagLast; flag = flag << 1 {
		if flag&pending != 0 {
			if p.handlers[irq] == nil {
				p.mu.Unlock()
				panic("unhandled interrupt " + flag.String())
			}
			run[irq] = p.handlers[irq]
			p.count[irq]++
		}
		irq += 1
	}
	p.mu.Unlock()

	for _, handler := range run {
		if handler != nil {
			handler()
		}
	}
}

// Count returns how often the interrupt was handled.
func (p *Interrupts) Count(flag InterruptFlag) uint64 {
	irq := irqIndex(flag)
	if irq < 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count[irq]
}
