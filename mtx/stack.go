package mtx

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Depth of the modelview matrix stack in the F3DEX microcode.
const StackDepth = 10

var (
	ErrStackOverflow  = errors.New("mtx: matrix stack overflow")
	ErrStackUnderflow = errors.New("mtx: matrix stack underflow")
)

// Stack is a matrix stack as maintained by the RSP.  The top is always valid
// and starts as identity; Push saves a copy of the top which Pop restores.
type Stack struct {
	top   mgl32.Mat4
	saved []mgl32.Mat4
	max   int
}

func NewStack(depth int) *Stack {
	s := &Stack{max: depth}
	s.Reset()
	return s
}

func (s *Stack) Reset() {
	s.top = mgl32.Ident4()
	s.saved = s.saved[:0]
}

func (s *Stack) Top() mgl32.Mat4 { return s.top }

// Depth returns the number of pushed matrices.
func (s *Stack) Depth() int { return len(s.saved) }

// Load replaces the top.
func (s *Stack) Load(m mgl32.Mat4) { s.top = m }

// Mul multiplies m onto the top, i.e. m is applied to vertices first.
func (s *Stack) Mul(m mgl32.Mat4) { s.top = s.top.Mul4(m) }

// Push saves the current top and returns it.
func (s *Stack) Push() (mgl32.Mat4, error) {
	if len(s.saved) >= s.max-1 {
		return s.top, ErrStackOverflow
	}
	s.saved = append(s.saved, s.top)
	return s.top, nil
}

// Pop restores the top saved by the last Push and returns it.
func (s *Stack) Pop() (mgl32.Mat4, error) {
	if len(s.saved) == 0 {
		return s.top, ErrStackUnderflow
	}
	s.top = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return s.top, nil
}
