package gfx

import (
	"fmt"
	"image"
	"image/color"

	"github.com/clktmr/n64squares/mtx"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	Eye, Target, Up mgl32.Vec3
}

// Lens are the parameters of the perspective projection.  FovY is in
// degrees.
type Lens struct {
	FovY, Aspect, Near, Far, Scale float32
}

// Policy tells the RCP what to do with the color image after the task
// finished.
type Policy uint8

const (
	NoSwap     Policy = iota
	SwapBuffer        // show the rendered image on the next vblank
)

func (p Policy) String() string {
	switch p {
	case NoSwap:
		return "noswap"
	case SwapBuffer:
		return "swapbuffer"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// Submitter hands a finished display list to the RCP.  Submit must not
// block; the RCP executes tasks in submission order and reports completion
// asynchronously.
type Submitter interface {
	Submit(start rdram.Addr, length int, uc ucode.Selector, policy Policy) error
}

// Encoder writes the display list of a frame.
type Encoder struct {
	Setup  Setup
	Camera Camera
	Lens   Lens

	Screen     image.Rectangle
	Background color.Color

	// Render targets.  ColorImage is queried once per frame.
	DepthImage rdram.Addr
	ColorImage func() rdram.Addr

	Mesh         rdram.Addr
	MeshVertices uint8
}

// Encode fills the display list of t with a frame showing objects.  It
// returns the start of the display list and the number of commands.  The
// display list must not be submitted if an error is returned.
func (e *Encoder) Encode(t *Task, objects []scene.Object) (start rdram.Addr, n int, err error) {
	if len(objects) > len(t.Objects) {
		return 0, 0, fmt.Errorf("%w: %d, max %d", ErrTooManyObjects, len(objects), len(t.Objects))
	}
	dl := t.DL
	start = dl.Addr()

	// rcp init
	dl.Append(
		gbi.Segment(0, 0),
		gbi.DisplayList(e.Setup.RSP),
		gbi.DisplayList(e.Setup.RDP),
	)

	e.clear(dl, e.DepthImage, gbi.Fill16(gbi.PackZDZ(gbi.MaxZ, 0)))
	e.clear(dl, e.ColorImage(), gbi.Fill16(e.fillColor()))

	proj, perspNorm := mtx.Perspective(e.Lens.FovY, e.Lens.Aspect, e.Lens.Near, e.Lens.Far, e.Lens.Scale)
	if err = t.StoreMatrix(t.Projection, proj); err != nil {
		return
	}
	dl.Append(
		gbi.Matrix(t.Projection, gbi.Projection|gbi.Load|gbi.NoPush),
		gbi.PerspNormalize(perspNorm),
	)

	view := mtx.LookAt(e.Camera.Eye, e.Camera.Target, e.Camera.Up)
	if err = t.StoreMatrix(t.ModelView, view); err != nil {
		return
	}
	dl.Append(gbi.Matrix(t.ModelView, gbi.ModelView|gbi.Load|gbi.NoPush))

	for i := range objects {
		if err = e.drawObject(t, &objects[i], i); err != nil {
			return
		}
	}

	dl.Append(
		gbi.FullSync(),
		gbi.EndDisplayList(),
	)

	return start, dl.Len(), dl.Check()
}

func (e *Encoder) fillColor() uint16 {
	bg := e.Background
	if bg == nil {
		bg = color.Black
	}
	c := color.RGBAModel.Convert(bg).(color.RGBA)
	return gbi.PackRGBA5551(c.R, c.G, c.B, c.A)
}

// clear fills img with a raw fill value.
func (e *Encoder) clear(dl *DisplayList, img rdram.Addr, fill uint32) {
	dl.Append(
		gbi.SetDepthImage(e.DepthImage),
		gbi.SetCycleType(gbi.CycleTypeFill),
		gbi.SetColorImage(img, e.Screen.Dx(), gbi.RGBA, gbi.BBP16),
		gbi.SetFillColor(fill),
		gbi.FillRectangle(image.Rectangle{Min: e.Screen.Min, Max: e.Screen.Max.Sub(image.Point{1, 1})}),
		gbi.PipeSync(),
	)
}

// drawObject draws the mesh with the object's transformation pushed onto the
// modelview matrix stack and pops it afterwards.
func (e *Encoder) drawObject(t *Task, obj *scene.Object, slot int) error {
	m := mtx.Position(float32(obj.Rotation), 0, 0, 1, obj.Position)
	if err := t.StoreMatrix(t.Objects[slot], m); err != nil {
		return err
	}

	t.DL.Append(
		gbi.Matrix(t.Objects[slot], gbi.ModelView|gbi.Mul|gbi.Push),
		gbi.Vertex(e.Mesh, e.MeshVertices, 0),
		gbi.SetCycleType(gbi.CycleTypeOne),
		gbi.SetRenderMode(gbi.AAZBOpaSurf, gbi.AAZBOpaSurf2),
		gbi.ClearGeometryMode(gbi.AllGeometryModes),
		gbi.SetGeometryMode(gbi.Shade|gbi.ShadingSmooth|gbi.ZBuffer),
		gbi.Tri2(0, 1, 2, 0, 2, 3),
		gbi.PipeSync(),
		gbi.PopMatrix(gbi.ModelView),
	)
	return nil
}
