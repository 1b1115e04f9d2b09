package framebuffer

import (
	"image"
	"image/color"

	"github.com/clktmr/n64squares/rcp/rdram"
)

// Alignment of color images in RDRAM as required by the video DAC.
const Alignment = 64

// Stores pixels in RGBA with 16bit (5:5:5:1), big endian.  Pix usually
// aliases RDRAM, so the RCP and the CPU see the same pixels.
type RGBA16 struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGBA16 allocates an image in mem.  The address of the first pixel is
// returned along with the image.
func NewRGBA16(mem *rdram.RDRAM, r image.Rectangle) (*RGBA16, rdram.Addr, error) {
	n := r.Dx() * r.Dy() * 2
	addr, err := mem.Alloc(n, Alignment)
	if err != nil {
		return nil, 0, err
	}
	pix, err := mem.Slice(addr, n)
	if err != nil {
		return nil, 0, err
	}
	return &RGBA16{Pix: pix, Stride: 2 * r.Dx(), Rect: r}, addr, nil
}

type colorRGBA16 uint16

func (c colorRGBA16) RGBA() (r, g, b, a uint32) {
	r, g, b = uint32(c&0xf800), uint32(c<<5)&0xf800, uint32(c<<10)&0xf800
	r |= r >> 5
	g |= g >> 5
	b |= b >> 5
	return r, g, b, uint32(c&1) * 0xffff
}

var RGBA16Model color.Model = color.ModelFunc(rgba16Model)

func rgba16Model(c color.Color) color.Color {
	if _, ok := c.(colorRGBA16); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	return colorRGBA16((r & 0xf800) | (g&0xf800)>>5 | (b&0xf800)>>10 | a>>15)
}

func (p *RGBA16) ColorModel() color.Model { return RGBA16Model }

func (p *RGBA16) Bounds() image.Rectangle {
	return p.Rect
}

func (p *RGBA16) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	return colorRGBA16(p.Raw(x, y))
}

func (p *RGBA16) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	col, _ := rgba16Model(c).(colorRGBA16)
	p.SetRaw(x, y, uint16(col))
}

// Raw returns the packed 5:5:5:1 value at x, y.  The point must be inside
// Rect.
func (p *RGBA16) Raw(x, y int) uint16 {
	offset := p.PixOffset(x, y)
	return uint16(p.Pix[offset])<<8 | uint16(p.Pix[offset+1])
}

// SetRaw stores a packed 5:5:5:1 value at x, y.  The point must be inside
// Rect.
func (p *RGBA16) SetRaw(x, y int, v uint16) {
	offset := p.PixOffset(x, y)
	p.Pix[offset] = uint8(v >> 8)
	p.Pix[offset+1] = uint8(v)
}

func (p *RGBA16) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
