package gbi_test

import (
	"image"
	"strings"
	"testing"

	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEncoding(t *testing.T) {
	tests := []struct {
		name     string
		cmd      gbi.Command
		expected gbi.Command
	}{
		{"segment", gbi.Segment(0, 0), gbi.Command{0xbc000006, 0}},
		{"segment3", gbi.Segment(3, 0x1000), gbi.Command{0xbc000c06, 0x1000}},
		{"dl", gbi.DisplayList(0x2000), gbi.Command{0x06000000, 0x2000}},
		{"enddl", gbi.EndDisplayList(), gbi.Command{0xb8000000, 0}},
		{"projection", gbi.Matrix(0x100, gbi.Projection|gbi.Load|gbi.NoPush), gbi.Command{0x01060040, 0x100}},
		{"push", gbi.Matrix(0x100, gbi.ModelView|gbi.Mul|gbi.Push), gbi.Command{0x01010040, 0x100}},
		{"pop", gbi.PopMatrix(gbi.ModelView), gbi.Command{0xbd000000, 0}},
		{"vertex", gbi.Vertex(0x400, 4, 0), gbi.Command{0x0400103f, 0x400}},
		{"tri2", gbi.Tri2(0, 1, 2, 0, 2, 3), gbi.Command{0xb1000204, 0x00000406}},
		{"perspnorm", gbi.PerspNormalize(0x84), gbi.Command{0xbc00000e, 0x84}},
		{"cycletype", gbi.SetCycleType(gbi.CycleTypeFill), gbi.Command{0xba001402, 0x00300000}},
		{"rendermode", gbi.SetRenderMode(gbi.AAZBOpaSurf, gbi.AAZBOpaSurf2), gbi.Command{0xb900031d, 0x00552078}},
		{"geometry", gbi.SetGeometryMode(gbi.Shade | gbi.ShadingSmooth | gbi.ZBuffer), gbi.Command{0xb7000000, 0x205}},
		{"cimg", gbi.SetColorImage(0x8000, 320, gbi.RGBA, gbi.BBP16), gbi.Command{0xff10013f, 0x8000}},
		{"fillrect", gbi.FillRectangle(image.Rect(0, 0, 319, 239)), gbi.Command{0xf64fc3bc, 0}},
		{"fillcolor", gbi.SetFillColor(gbi.Fill16(gbi.PackZDZ(gbi.MaxZ, 0))), gbi.Command{0xf7000000, 0xfffcfffc}},
		{"pipesync", gbi.PipeSync(), gbi.Command{0xe7000000, 0}},
		{"fullsync", gbi.FullSync(), gbi.Command{0xe9000000, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd != tt.expected {
				t.Fatalf("got %08x %08x, expected %08x %08x", tt.cmd.UW, tt.cmd.LW, tt.expected.UW, tt.expected.LW)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	n, v0 := gbi.Vertex(0x400, 4, 2).VertexRange()
	if n != 4 || v0 != 2 {
		t.Errorf("vertex range %d %d", n, v0)
	}

	tris := gbi.Tri2(0, 1, 2, 0, 2, 3).Triangles()
	if len(tris) != 2 || tris[0] != [3]uint8{0, 1, 2} || tris[1] != [3]uint8{0, 2, 3} {
		t.Errorf("triangles %v", tris)
	}

	r := image.Rect(8, 4, 319, 239)
	if got := gbi.FillRectangle(r).Rectangle(); got != r {
		t.Errorf("rectangle %v, expected %v", got, r)
	}

	cimg := gbi.SetColorImage(0x8000, 320, gbi.RGBA, gbi.BBP16)
	if cimg.ImageWidth() != 320 {
		t.Errorf("image width %d", cimg.ImageWidth())
	}
	if f, bpp := cimg.ImageFormat(); f != gbi.RGBA || bpp != gbi.BBP16 {
		t.Errorf("image format %x %x", f, bpp)
	}

	idx, off := gbi.Segment(3, 0).MoveWord()
	if idx != gbi.MoveWordSegment || off != 12 {
		t.Errorf("moveword %d %d", idx, off)
	}
}

func TestMtx(t *testing.T) {
	m := mgl32.Translate3D(1.5, -200, 0.25).Mul4(mgl32.Scale3D(2, 2, 2))
	p := gbi.NewMtx(m)
	if got := p.Mat4(); !got.ApproxEqual(m) {
		t.Fatalf("got %v, expected %v", got, m)
	}

	mem := rdram.New(0x1000)
	addr, err := mem.Alloc(gbi.MtxSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Store(mem, addr); err != nil {
		t.Fatal(err)
	}
	q, err := gbi.LoadMtx(mem, addr)
	if err != nil {
		t.Fatal(err)
	}
	if q != p {
		t.Fatalf("loaded %v, stored %v", q, p)
	}

	// integer part of element 0 is the first halfword, fraction follows all
	// integer parts
	raw, _ := mem.Slice(addr, gbi.MtxSize)
	if raw[0] != 0 || raw[1] != 2 || raw[32] != 0 || raw[33] != 0 {
		t.Errorf("unexpected layout %x", raw)
	}
}

func TestDisassemble(t *testing.T) {
	var sb strings.Builder
	cmds := []gbi.Command{gbi.Segment(0, 0), gbi.Matrix(0x100, gbi.ModelView|gbi.Push), gbi.EndDisplayList()}
	if err := gbi.Disassemble(&sb, 0x1000, cmds); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", sb.String())
	}
	if !strings.Contains(lines[0], "Segment 0") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.Contains(lines[1], "ModelView|Mul|Push") || !strings.HasPrefix(lines[1], "0x00001008:") {
		t.Errorf("line 1: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "EndDisplayList") {
		t.Errorf("line 2: %q", lines[2])
	}
}

func TestChecksum(t *testing.T) {
	a := []gbi.Command{gbi.PipeSync(), gbi.FullSync(), gbi.EndDisplayList()}
	b := []gbi.Command{gbi.FullSync(), gbi.PipeSync(), gbi.EndDisplayList()}
	if gbi.Checksum(a) != gbi.Checksum(a) {
		t.Fatal("checksum not deterministic")
	}
	if gbi.Checksum(a) == gbi.Checksum(b) {
		t.Error("reordered commands produce the same checksum")
	}
}
