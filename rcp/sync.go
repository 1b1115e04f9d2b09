package rcp

import "sync/atomic"

// Queue passes values from multiple writer goroutines to a single reader.
// Its capacity is fixed and writers never block.
type Queue[T any] struct {
	ring              []T
	start, end, write atomic.Int32
	ready             chan struct{}
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		ring:  make([]T, capacity+1),
		ready: make(chan struct{}, 1),
	}
}

// Cap returns the number of values the queue can hold.
func (p *Queue[T]) Cap() int { return len(p.ring) - 1 }

// Len returns the number of queued values.
func (p *Queue[T]) Len() int {
	n := int(p.end.Load() - p.start.Load())
	if n < 0 {
		n += len(p.ring)
	}
	return n
}

// Push appends v, unless the queue is full.
func (p *Queue[T]) Push(v T) bool {
	for {
		start := p.start.Load()
		end := p.end.Load()
		next := (end + 1) % int32(len(p.ring))
		if next == start {
			return false
		}
		if !p.write.CompareAndSwap(end, next) {
			continue // another writer claimed the slot
		}

		p.ring[end] = v

		if !p.end.CompareAndSwap(end, next) {
			panic("queue corrupted")
		}
		break
	}

	select {
	case p.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest value.  Must only be called by the reader.
func (p *Queue[T]) Pop() (v T, ok bool) {
	start := p.start.Load()
	end := p.end.Load()
	if end == start {
		return v, false
	}

	v = p.ring[start]

	// Write zero value to avoid holding hidden references that might
	// prevent freeing memory.
	var zero T
	p.ring[start] = zero

	if !p.start.CompareAndSwap(start, (start+1)%int32(len(p.ring))) {
		panic("multiple readers")
	}
	return v, true
}

// Ready receives a value after at least one Push since the last receive.
func (p *Queue[T]) Ready() <-chan struct{} { return p.ready }
