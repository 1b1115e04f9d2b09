package gfx_test

import (
	"image"
	"testing"

	"github.com/clktmr/n64squares/gfx"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/scene"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

const (
	screenWidth  = 320
	screenHeight = 240
)

type fixture struct {
	mem     *rdram.RDRAM
	pool    *gfx.Pool
	encoder *gfx.Encoder
}

func newFixture(t testing.TB, tasks, capacity int) *fixture {
	t.Helper()
	mem := rdram.New(rdram.DefaultSize)

	pool, err := gfx.NewPool(mem, tasks, capacity)
	if err != nil {
		t.Fatal(err)
	}
	setup, err := gfx.InstallSetup(mem)
	if err != nil {
		t.Fatal(err)
	}
	zbuf, err := mem.Alloc(screenWidth*screenHeight*2, 64)
	if err != nil {
		t.Fatal(err)
	}
	cbuf, err := mem.Alloc(screenWidth*screenHeight*2, 64)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := mem.Alloc(len(scene.Square)*gbi.VtxSize, rdram.CacheLineSize)
	if err != nil {
		t.Fatal(err)
	}
	if err := gbi.StoreVertices(mem, mesh, scene.Square[:]); err != nil {
		t.Fatal(err)
	}

	return &fixture{
		mem:  mem,
		pool: pool,
		encoder: &gfx.Encoder{
			Setup: setup,
			Camera: gfx.Camera{
				Eye: mgl32.Vec3{-200, -200, -200},
				Up:  mgl32.Vec3{0, 1, 0},
			},
			Lens: gfx.Lens{
				FovY: 45, Aspect: float32(screenWidth) / screenHeight,
				Near: 10, Far: 1000, Scale: 1,
			},
			Screen:       image.Rect(0, 0, screenWidth, screenHeight),
			Background:   colornames.Black,
			DepthImage:   zbuf,
			ColorImage:   func() rdram.Addr { return cbuf },
			Mesh:         mesh,
			MeshVertices: uint8(len(scene.Square)),
		},
	}
}

// commandsPerFrame is the length of a display list drawing n objects.
func commandsPerFrame(n int) int { return 20 + 9*n }

func objects(n int) []scene.Object {
	objs := make([]scene.Object, n)
	for i := range objs {
		objs[i] = scene.Object{Index: i, Rotation: 10 * i}
	}
	return objs
}
