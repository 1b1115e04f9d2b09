package mtx_test

import (
	"errors"
	"testing"

	"github.com/clktmr/n64squares/mtx"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPerspNorm(t *testing.T) {
	tests := []struct {
		near, far float32
		expected  uint16
	}{
		{10, 1000, 129},
		{1, 1, 0xffff},
		{0.5, 0.5, 0xffff},
		{1, 3, 32768},
		{1e6, 1e7, 1},
	}
	for _, tt := range tests {
		if got := mtx.PerspNorm(tt.near, tt.far); got != tt.expected {
			t.Errorf("PerspNorm(%v, %v) = %d, expected %d", tt.near, tt.far, got, tt.expected)
		}
	}

	_, norm := mtx.Perspective(45, 320.0/240.0, 10, 1000, 1)
	if norm != mtx.PerspNorm(10, 1000) {
		t.Errorf("Perspective returned norm %d", norm)
	}
}

func TestPosition(t *testing.T) {
	pos := mgl32.Vec3{0, 0, 200}
	m := mtx.Position(90, 0, 0, 1, pos)

	// roll rotates about the z-axis before translating
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if got.Sub(mgl32.Vec3{0, 1, 200}).Len() > 1e-5 {
		t.Errorf("got %v", got)
	}

	scaled := mtx.Position(0, 0, 0, 2, mgl32.Vec3{})
	if got := scaled.Mul4x1(mgl32.Vec4{1, 1, 1, 1}).Vec3(); got.Sub(mgl32.Vec3{2, 2, 2}).Len() > 1e-5 {
		t.Errorf("scale not applied: %v", got)
	}
}

func TestLookAt(t *testing.T) {
	eye := mgl32.Vec3{-200, -200, -200}
	m := mtx.LookAt(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	// the target ends up on the negative z-axis in view space
	got := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if got.Sub(mgl32.Vec3{0, 0, -eye.Len()}).Len() > 1e-3 {
		t.Errorf("got %v", got)
	}
}

func TestStack(t *testing.T) {
	s := mtx.NewStack(3)
	if s.Top() != mgl32.Ident4() {
		t.Fatal("stack must start with identity")
	}

	base := mgl32.Translate3D(1, 2, 3)
	s.Load(base)

	if _, err := s.Push(); err != nil {
		t.Fatal(err)
	}
	s.Mul(mgl32.Scale3D(2, 2, 2))
	if s.Top() != base.Mul4(mgl32.Scale3D(2, 2, 2)) {
		t.Error("unexpected top after Mul")
	}
	if _, err := s.Push(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Push(); !errors.Is(err, mtx.ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
	if s.Depth() != 2 {
		t.Fatalf("depth %d", s.Depth())
	}

	s.Pop()
	top, err := s.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if top != base {
		t.Error("pop didn't restore the loaded matrix")
	}
	if _, err := s.Pop(); !errors.Is(err, mtx.ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}
