// Package console draws a scrolling text console on top of the screen.  It's
// an io.Writer, so it can be the output of a logger.
package console

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/clktmr/n64squares/drivers/controller"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Keep at most this many bytes of text.
const MaxBuffer = 16 << 10

type Console struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	scroll image.Point
	face   font.Face

	Foreground, Background color.Color
}

func NewConsole() *Console {
	return &Console{
		face:       basicfont.Face7x13,
		Foreground: color.White,
		Background: color.RGBA{0, 0, 0, 0xa0},
	}
}

func (v *Console) Write(p []byte) (n int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, err = v.buf.Write(p)
	if v.buf.Len() > MaxBuffer {
		b := v.buf.Bytes()
		b = b[len(b)-MaxBuffer:]
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			b = b[i+1:]
		}
		v.buf.Reset()
		v.buf.Write(b)
	}
	return
}

// Update scrolls the console with the C buttons.
func (v *Console) Update(input *controller.Controller) {
	v.mu.Lock()
	defer v.mu.Unlock()
	pressed := input.Pressed()
	advance, _ := v.face.GlyphAdvance(' ')
	switch {
	case pressed&controller.ButtonCUp != 0:
		v.scroll.Y += 1
	case pressed&controller.ButtonCDown != 0:
		v.scroll.Y = max(0, v.scroll.Y-1)
	case pressed&controller.ButtonCLeft != 0:
		v.scroll.X = min(0, v.scroll.X+advance.Round())
	case pressed&controller.ButtonCRight != 0:
		v.scroll.X -= advance.Round()
	}
}

// Lines returns the lines visible in a console of the given height, oldest
// first.
func (v *Console) Lines(height int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lines(height)
}

func (v *Console) lines(height int) []string {
	all := bytes.Split(bytes.TrimRight(v.buf.Bytes(), "\n"), []byte{'\n'})
	if len(all) == 1 && len(all[0]) == 0 {
		return nil
	}
	visible := max(1, height/v.face.Metrics().Height.Ceil())

	v.scroll.Y = min(v.scroll.Y, max(0, len(all)-visible))
	end := len(all) - v.scroll.Y
	start := max(0, end-visible)

	lines := make([]string, 0, end-start)
	for _, l := range all[start:end] {
		lines = append(lines, string(l))
	}
	return lines
}

// Draw renders the visible text into r of dst.
func (v *Console) Draw(dst draw.Image, r image.Rectangle) {
	v.mu.Lock()
	defer v.mu.Unlock()

	draw.Draw(dst, r, image.NewUniform(v.Background), image.Point{}, draw.Over)

	m := v.face.Metrics()
	d := font.Drawer{Dst: clip{dst, r}, Src: image.NewUniform(v.Foreground), Face: v.face}
	y := r.Min.Y + m.Ascent.Ceil()
	for _, line := range v.lines(r.Dy()) {
		d.Dot = fixed.P(r.Min.X+v.scroll.X, y)
		d.DrawString(line)
		y += m.Height.Ceil()
	}
}

// clip limits drawing to a rectangle of an image.
type clip struct {
	draw.Image
	r image.Rectangle
}

func (c clip) Bounds() image.Rectangle { return c.r.Intersect(c.Image.Bounds()) }

func (c clip) Set(x, y int, col color.Color) {
	if (image.Point{x, y}).In(c.r) {
		c.Image.Set(x, y, col)
	}
}
