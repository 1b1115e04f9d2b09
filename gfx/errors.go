package gfx

import "errors"

var (
	// ErrOverrun means a display list exceeded the capacity of its buffer.
	ErrOverrun = errors.New("gfx: display list overrun")
	// ErrSlotInFlight means the next task is still executed by the RCP.
	ErrSlotInFlight = errors.New("gfx: graphics task still in flight")
	// ErrTooManyObjects means a frame has more objects than matrix slots.
	ErrTooManyObjects = errors.New("gfx: too many objects")
)
