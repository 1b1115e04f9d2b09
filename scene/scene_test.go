package scene_test

import (
	"slices"
	"testing"

	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/scene"
)

func rotations(s *scene.Scene) (r []int) {
	for _, o := range s.Objects {
		r = append(r, o.Rotation)
	}
	return
}

var (
	released = controller.State{Plugged: true}
	pressed  = controller.State{Down: scene.ToggleButton, Plugged: true}
)

func TestWrap(t *testing.T) {
	tests := []struct{ in, out int }{
		{0, 0}, {359, 359}, {360, 0}, {361, 1}, {-1, 359}, {-360, 0}, {-721, 359},
	}
	for _, tt := range tests {
		if got := scene.Wrap(tt.in); got != tt.out {
			t.Errorf("Wrap(%d) = %d, expected %d", tt.in, got, tt.out)
		}
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		input    controller.State
		expected []int
		forward  bool
	}{
		{"decrement", released, []int{359, 19, 39, 39, 39}, false},
		{"toggle", pressed, []int{1, 21, 41, 41, 41}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New()
			var c controller.Controller
			c.Poll(&controller.Script{States: []controller.State{tt.input}})
			s.Update(&c)

			if got := rotations(s); !slices.Equal(got, tt.expected) {
				t.Errorf("rotations %v, expected %v", got, tt.expected)
			}
			if s.Forward != tt.forward {
				t.Errorf("direction %v, expected %v", s.Forward, tt.forward)
			}
		})
	}
}

func TestFullCycle(t *testing.T) {
	for _, forward := range []bool{false, true} {
		s := scene.New()
		s.Forward = forward
		initial := rotations(s)

		src := &controller.Script{States: []controller.State{released}}
		var c controller.Controller
		for range 360 {
			c.Poll(src)
			s.Update(&c)
			for _, r := range rotations(s) {
				if r < 0 || r >= 360 {
					t.Fatalf("rotation %d out of range", r)
				}
			}
		}
		if got := rotations(s); !slices.Equal(got, initial) {
			t.Errorf("forward=%v: rotations %v after full cycle, expected %v", forward, got, initial)
		}
	}
}

func TestToggleHeld(t *testing.T) {
	s := scene.New()
	src := &controller.Script{States: []controller.State{
		released, pressed, pressed, pressed, released, pressed,
	}}
	expected := []bool{false, true, true, true, true, false}

	var c controller.Controller
	for i, dir := range expected {
		c.Poll(src)
		s.Update(&c)
		if s.Forward != dir {
			t.Errorf("tick %d: direction %v, expected %v", i, s.Forward, dir)
		}
	}
}
