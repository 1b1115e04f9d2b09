// Package controller tracks the input of a game controller between polls.
// All queries compare the last two polls, so e.g. Pressed reports a button
// exactly once no matter how long it's held down.
package controller

// State is a single reading of a controller.
type State struct {
	Down    ButtonMask
	X, Y    int8
	Plugged bool
}

// Source reads the current state of a controller, e.g. from the joybus or a
// keyboard.
type Source interface {
	Poll() State
}

type Controller struct {
	current, last State
}

// Poll reads a new state from src.  Call this once per frame.
func (c *Controller) Poll(src Source) {
	c.last = c.current
	c.current = src.Poll()
}

func (c *Controller) Down() ButtonMask {
	return c.current.Down
}

func (c *Controller) Changed() ButtonMask {
	return c.current.Down ^ c.last.Down
}

func (c *Controller) Pressed() ButtonMask {
	return c.Changed() & c.current.Down
}

func (c *Controller) Released() ButtonMask {
	return c.Changed() & c.last.Down
}

func (c *Controller) X() int8 {
	return c.current.X
}

func (c *Controller) Y() int8 {
	return c.current.Y
}

func (c *Controller) DX() int8 {
	return c.current.X - c.last.X
}

func (c *Controller) DY() int8 {
	return c.current.Y - c.last.Y
}

func (c *Controller) Plugged() bool {
	return c.current.Plugged && !c.last.Plugged
}

func (c *Controller) Unplugged() bool {
	return !c.current.Plugged && c.last.Plugged
}
