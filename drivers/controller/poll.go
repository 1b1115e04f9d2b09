package controller

import "sync"

// Script replays a fixed sequence of states, one per poll.  After the last
// one it keeps returning the final state.
type Script struct {
	States []State
	next   int
}

func (s *Script) Poll() State {
	if len(s.States) == 0 {
		return State{Plugged: true}
	}
	st := s.States[min(s.next, len(s.States)-1)]
	s.next++
	return st
}

// Latch is a Source that can be fed from another goroutine, e.g. a window's
// event loop.
type Latch struct {
	mu    sync.Mutex
	state State
}

func (l *Latch) Set(st State) {
	l.mu.Lock()
	l.state = st
	l.mu.Unlock()
}

func (l *Latch) Poll() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
