// Package console connects a stage to the platform that provides display
// refresh ticks and runs the RCP.
package console

import (
	"context"
)

// Platform is the environment the demo runs in.
type Platform interface {
	// InitDisplay prepares the video output.  Nothing is shown until
	// EnableOutput is called.
	InitDisplay() error

	// SetFrameCallback registers fn to be called once per display refresh
	// with the number of graphics tasks the RCP didn't finish yet.
	SetFrameCallback(fn func(pending int))

	// EnableOutput starts showing presented framebuffers.
	EnableOutput()

	// Run blocks until ctx is canceled or the platform shuts down.
	Run(ctx context.Context) error
}

// Framer is called once per display refresh.
type Framer interface {
	Frame(pending int)
}

// Run initializes the display of p, hooks f into the refresh and runs p until
// it returns.
func Run(ctx context.Context, p Platform, f Framer) error {
	if err := p.InitDisplay(); err != nil {
		return err
	}
	p.SetFrameCallback(f.Frame)
	p.EnableOutput()
	return p.Run(ctx)
}
