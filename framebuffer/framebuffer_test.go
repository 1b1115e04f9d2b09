package framebuffer_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/clktmr/n64squares/framebuffer"
	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/embeddedgo/display/pix"
)

var screen = image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)

func TestRGBA16(t *testing.T) {
	img, addr, err := framebuffer.NewRGBA16(rdram.New(1<<20), screen)
	if err != nil {
		t.Fatal(err)
	}
	if addr%framebuffer.Alignment != 0 {
		t.Errorf("address %#x not aligned", addr)
	}

	tests := []struct {
		in  color.Color
		raw uint16
	}{
		{color.RGBA{0xff, 0xff, 0xff, 0xff}, 0xffff},
		{color.RGBA{0, 0, 0, 0xff}, 0x0001},
		{color.RGBA{0xff, 0, 0, 0xff}, 0xf801},
		{color.RGBA{0, 0xff, 0, 0xff}, 0x07c1},
		{color.RGBA{0, 0, 0xff, 0xff}, 0x003f},
		{color.RGBA{}, 0x0000},
	}
	for _, tt := range tests {
		img.Set(10, 20, tt.in)
		if got := img.Raw(10, 20); got != tt.raw {
			t.Errorf("%v stored as %#04x, expected %#04x", tt.in, got, tt.raw)
		}
		r0, g0, b0, a0 := tt.in.RGBA()
		r1, g1, b1, a1 := img.At(10, 20).RGBA()
		for _, d := range []int64{int64(r0) - int64(r1), int64(g0) - int64(g1), int64(b0) - int64(b1), int64(a0) - int64(a1)} {
			if d > 0x0800 || d < -0x0800 {
				t.Errorf("%v read back as %v", tt.in, img.At(10, 20))
				break
			}
		}
	}

	if off := img.PixOffset(1, 2); off != 2*framebuffer.WIDTH*2+2 {
		t.Errorf("offset %d", off)
	}
	img.Set(-1, 0, color.White) // ignored
}

func TestPresent(t *testing.T) {
	fb, err := framebuffer.NewFramebuffer(rdram.New(1<<20), screen)
	if err != nil {
		t.Fatal(err)
	}
	front, back := fb.Front(), fb.Back()
	if front == back {
		t.Fatal("front and back buffer are the same")
	}
	if err := fb.Present(back); err != nil {
		t.Fatal(err)
	}
	if fb.Front() != back || fb.Back() != front {
		t.Error("buffers not swapped")
	}
	if fb.Swaps() != 1 {
		t.Errorf("%d swaps", fb.Swaps())
	}
	if err := fb.Present(back + 2); !errors.Is(err, framebuffer.ErrUnknownBuffer) {
		t.Errorf("expected ErrUnknownBuffer, got %v", err)
	}
	if fb.Image(back) == nil || fb.Image(0) != nil {
		t.Error("image lookup by address failed")
	}
}

func TestPixDriver(t *testing.T) {
	mem := rdram.New(1 << 20)
	fb, err := framebuffer.NewFramebuffer(mem, screen)
	if err != nil {
		t.Fatal(err)
	}

	disp := pix.NewDisplay(fb)
	a := disp.NewArea(image.Rect(0, 0, 16, 8))
	a.SetColor(color.White)
	a.Fill(a.Bounds())
	a.Flush()

	snap := fb.Snapshot()
	if got := snap.RGBAAt(4, 4); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("filled pixel %v", got)
	}
	if got := snap.RGBAAt(20, 20); got.A != 0 {
		t.Errorf("pixel outside area %v", got)
	}

	// Overlays only touch the front buffer.
	back := fb.Image(fb.Back())
	if back.Raw(4, 4) != 0 {
		t.Errorf("back buffer modified")
	}
}
