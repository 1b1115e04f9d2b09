// Package framebuffer implements the double buffered color image the RCP
// renders into and the video output scans out.
package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/clktmr/n64squares/rcp/rdram"
)

const (
	WIDTH  = 320
	HEIGHT = 240
)

var ErrUnknownBuffer = errors.New("framebuffer: address is not a color buffer")

// Framebuffer holds two RGBA16 images in RDRAM.  The front buffer is shown,
// the back buffer is the render target of the next graphics task.  Present is
// called by the RCP once a task that ends with a buffer swap finished.
//
// Framebuffer implements pix.Driver, drawing into the front buffer.  That's
// meant for overlays, which are visible until the next Present.
type Framebuffer struct {
	mu    sync.Mutex
	bufs  [2]*RGBA16
	addrs [2]rdram.Addr
	front int
	fill  image.Uniform

	start     time.Time
	frametime time.Duration
	swaps     int
}

func NewFramebuffer(mem *rdram.RDRAM, r image.Rectangle) (*Framebuffer, error) {
	fb := &Framebuffer{fill: image.Uniform{C: color.Black}}
	for i := range fb.bufs {
		img, addr, err := NewRGBA16(mem, r)
		if err != nil {
			return nil, err
		}
		fb.bufs[i], fb.addrs[i] = img, addr
	}
	fb.start = time.Now()
	return fb, nil
}

func (fb *Framebuffer) Bounds() image.Rectangle {
	return fb.bufs[0].Bounds()
}

// Back returns the address of the buffer that isn't shown.
func (fb *Framebuffer) Back() rdram.Addr {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.addrs[1-fb.front]
}

// Front returns the address of the buffer that is shown.
func (fb *Framebuffer) Front() rdram.Addr {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.addrs[fb.front]
}

// Present shows the buffer at addr.
func (fb *Framebuffer) Present(addr rdram.Addr) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	for i, a := range fb.addrs {
		if a == addr {
			fb.front = i
			fb.swaps++
			fb.frametime = time.Since(fb.start)
			fb.start = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %#x", ErrUnknownBuffer, addr)
}

// Image returns the buffer at addr, or nil if addr is neither buffer.
func (fb *Framebuffer) Image(addr rdram.Addr) *RGBA16 {
	for i, a := range fb.addrs {
		if a == addr {
			return fb.bufs[i]
		}
	}
	return nil
}

// View calls fn with the front buffer.  The buffer isn't swapped while fn
// runs.
func (fb *Framebuffer) View(fn func(img *RGBA16)) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fn(fb.bufs[fb.front])
}

// Swaps returns the number of presented frames.
func (fb *Framebuffer) Swaps() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.swaps
}

// FPS returns the rate derived from the time between the last two swaps.
func (fb *Framebuffer) FPS() float32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.frametime == 0 {
		return 0
	}
	return 1e9 / float32(fb.frametime)
}

// Snapshot copies the front buffer into a new RGBA image.
func (fb *Framebuffer) Snapshot() *image.RGBA {
	var dst *image.RGBA
	fb.View(func(img *RGBA16) {
		dst = image.NewRGBA(img.Bounds())
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	})
	return dst
}
