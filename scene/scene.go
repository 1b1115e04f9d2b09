// Package scene holds the state of the world: a few squares rotating around
// their z-axis.
package scene

import (
	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/rcp/gbi"

	"github.com/go-gl/mathgl/mgl32"
)

type Object struct {
	Index    int
	Position mgl32.Vec3
	Rotation int // degrees in [0,360)
}

// Square is the mesh shared by all objects: four corners with a vertex color
// each, drawn as two triangles (0,1,2) and (0,2,3).
var Square = [4]gbi.Vtx{
	{X: -64, Y: 64, Z: -5, R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	{X: 64, Y: 64, Z: -5, R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	{X: 64, Y: -64, Z: -5, R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	{X: -64, Y: -64, Z: -5, R: 0xff, G: 0x00, B: 0x00, A: 0xff},
}

// Button that reverses the direction of rotation.
const ToggleButton = controller.ButtonA

type Scene struct {
	Objects []Object

	// Rotations increase by a degree per frame if set, decrease otherwise.
	Forward bool
}

// New returns the default scene of five squares.
func New() *Scene {
	positions := []mgl32.Vec3{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 200},
		{0, 0, -100},
	}
	rotations := []int{0, 20, 40, 40, 40}

	s := &Scene{Objects: make([]Object, len(positions))}
	for i := range s.Objects {
		s.Objects[i] = Object{Index: i, Position: positions[i], Rotation: rotations[i]}
	}
	return s
}

// Update advances the scene by one frame.  The toggle button flips the
// direction on the frame it's pressed, holding it has no further effect.
func (s *Scene) Update(input *controller.Controller) {
	if input.Pressed()&ToggleButton != 0 {
		s.Forward = !s.Forward
	}

	step := -1
	if s.Forward {
		step = 1
	}
	for i := range s.Objects {
		s.Objects[i].Rotation = Wrap(s.Objects[i].Rotation + step)
	}
}

// Wrap normalizes degrees into [0,360).
func Wrap(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
