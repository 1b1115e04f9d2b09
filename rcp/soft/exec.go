package soft

import (
	"fmt"
	"image"

	"github.com/clktmr/n64squares/framebuffer"
	"github.com/clktmr/n64squares/mtx"
	"github.com/clktmr/n64squares/rcp"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/go-gl/mathgl/mgl32"
)

// Maximum nesting of display list calls.
const MaxDisplayListDepth = 18

// Upper bound of commands executed per task, catches display lists calling
// each other in a loop.
const maxCommands = 1 << 20

type vertex struct {
	x, y, z    float32 // screen space, z in [0, gbi.MaxZ]
	r, g, b, a uint8
	clipped    bool
}

type image16 struct {
	addr  rdram.Addr
	width int
	img   *framebuffer.RGBA16
}

// state is the RSP and RDP state while executing a task.
type state struct {
	viewport image.Rectangle

	segments [gbi.Segments]rdram.Addr
	ret      []rdram.Addr

	projection mgl32.Mat4
	modelview  *mtx.Stack
	perspNorm  uint16
	vertices   [gbi.VertexCacheSize]vertex

	geometry       gbi.GeometryMode
	otherH, otherL uint32

	color image16
	depth image16
	fill  uint32

	synced              bool
	commands, triangles int
}

func (s *state) reset(viewport image.Rectangle) {
	modelview := s.modelview
	if modelview == nil {
		modelview = mtx.NewStack(mtx.StackDepth)
	}
	modelview.Reset()
	*s = state{
		viewport:   viewport,
		ret:        s.ret[:0],
		projection: mgl32.Ident4(),
		modelview:  modelview,
	}
}

func (s *state) cycleType() gbi.CycleType {
	return gbi.CycleType(s.otherH & (0x3 << 20))
}

func (s *state) renderMode() gbi.RenderMode {
	return gbi.RenderMode(s.otherL)
}

func (r *RCP) translate(addr rdram.Addr) rdram.Addr {
	seg := uint32(addr) >> 24 & 0xf
	return r.state.segments[seg] + addr&0x00ff_ffff
}

func fault(pc rdram.Addr, c gbi.Command, format string, args ...any) error {
	return fmt.Errorf("%w at %#08x (%v): %s", ErrFault, pc, c, fmt.Sprintf(format, args...))
}

// run interprets the display list of t.
func (r *RCP) run(t *task) error {
	s := &r.state
	pc, end := t.start, t.start+rdram.Addr(t.length)

	for {
		if pc >= end && len(s.ret) == 0 {
			return nil // top level display list without end marker
		}
		if s.commands >= maxCommands {
			return fmt.Errorf("%w: more than %d commands", ErrFault, maxCommands)
		}

		c, err := gbi.LoadCommand(r.mem, pc)
		if err != nil {
			return fmt.Errorf("%w at %#08x: %w", ErrFault, pc, err)
		}
		s.commands++
		next := pc + gbi.CommandSize

		switch c.Opcode() {
		case gbi.OpNoop, gbi.OpPipeSync:

		case gbi.OpDisplayList:
			if len(s.ret) >= MaxDisplayListDepth-1 {
				return fault(pc, c, "display list stack overflow")
			}
			s.ret = append(s.ret, next)
			next = r.translate(c.Addr())

		case gbi.OpEndDisplayList:
			if len(s.ret) == 0 {
				return nil
			}
			next = s.ret[len(s.ret)-1]
			s.ret = s.ret[:len(s.ret)-1]

		case gbi.OpMoveWord:
			index, offset := c.MoveWord()
			switch index {
			case gbi.MoveWordSegment:
				seg := offset / 4
				if seg >= gbi.Segments {
					return fault(pc, c, "invalid segment %d", seg)
				}
				s.segments[seg] = c.Addr() & 0x00ff_ffff
			case gbi.MoveWordPerspNormal:
				s.perspNorm = uint16(c.LW)
			default:
				return fault(pc, c, "unsupported index %#x", index)
			}

		case gbi.OpMatrix:
			if err := r.matrix(c); err != nil {
				return fault(pc, c, "%v", err)
			}

		case gbi.OpPopMatrix:
			if _, err := s.modelview.Pop(); err != nil {
				return fault(pc, c, "%v", err)
			}

		case gbi.OpVertex:
			if err := r.loadVertices(c); err != nil {
				return fault(pc, c, "%v", err)
			}

		case gbi.OpTri1, gbi.OpTri2:
			if ct := s.cycleType(); ct != gbi.CycleTypeOne && ct != gbi.CycleTypeTwo {
				return fault(pc, c, "triangle in cycle type %#x", uint32(ct))
			}
			if s.color.img == nil {
				return fault(pc, c, "no color image")
			}
			for _, tri := range c.Triangles() {
				for _, i := range tri {
					if int(i) >= len(s.vertices) {
						return fault(pc, c, "vertex %d out of range", i)
					}
				}
				r.triangle(&s.vertices[tri[0]], &s.vertices[tri[1]], &s.vertices[tri[2]])
			}

		case gbi.OpSetGeometryMode:
			s.geometry |= gbi.GeometryMode(c.LW)
		case gbi.OpClearGeometryMode:
			s.geometry &^= gbi.GeometryMode(c.LW)

		case gbi.OpSetOtherModeH:
			shift, length, value := c.OtherMode()
			s.otherH = setBits(s.otherH, shift, length, value)
		case gbi.OpSetOtherModeL:
			shift, length, value := c.OtherMode()
			s.otherL = setBits(s.otherL, shift, length, value)

		case gbi.OpSetCImage:
			format, bbp := c.ImageFormat()
			if format != gbi.RGBA || bbp != gbi.BBP16 {
				return fault(pc, c, "unsupported color image format")
			}
			img, err := r.image16(c.Addr(), c.ImageWidth())
			if err != nil {
				return fault(pc, c, "%v", err)
			}
			s.color = img

		case gbi.OpSetZImage:
			width := s.viewport.Dx()
			if s.color.width > 0 {
				width = s.color.width
			}
			img, err := r.image16(c.Addr(), width)
			if err != nil {
				return fault(pc, c, "%v", err)
			}
			s.depth = img

		case gbi.OpSetFillColor:
			s.fill = c.LW

		case gbi.OpFillRect:
			if s.cycleType() != gbi.CycleTypeFill {
				return fault(pc, c, "fill rectangle requires fill mode")
			}
			if s.color.img == nil {
				return fault(pc, c, "no color image")
			}
			s.fillRect(c.Rectangle())

		case gbi.OpFullSync:
			if !s.synced {
				s.synced = true
				r.intr.Raise(rcp.DisplayProcessor)
			}

		default:
			return fault(pc, c, "unknown opcode")
		}

		pc = next
	}
}

func setBits(word uint32, shift, length uint8, value uint32) uint32 {
	mask := uint32(1<<length-1) << shift
	return word&^mask | value&mask
}

// image16 maps a 16-bit image of the viewport's height.
func (r *RCP) image16(addr rdram.Addr, width int) (image16, error) {
	addr = r.translate(addr)
	height := r.state.viewport.Max.Y
	pix, err := r.mem.Slice(addr, width*height*2)
	if err != nil {
		return image16{}, err
	}
	return image16{
		addr:  addr,
		width: width,
		img: &framebuffer.RGBA16{
			Pix: pix, Stride: 2 * width, Rect: image.Rect(0, 0, width, height),
		},
	}, nil
}

func (r *RCP) matrix(c gbi.Command) error {
	s := &r.state
	p, err := gbi.LoadMtx(r.mem, r.translate(c.Addr()))
	if err != nil {
		return err
	}
	m := p.Mat4()
	flags := c.MatrixFlags()

	if flags&gbi.Projection != 0 {
		if flags&gbi.Load != 0 {
			s.projection = m
		} else {
			s.projection = s.projection.Mul4(m)
		}
		return nil
	}

	if flags&gbi.Push != 0 {
		if _, err := s.modelview.Push(); err != nil {
			return err
		}
	}
	if flags&gbi.Load != 0 {
		s.modelview.Load(m)
	} else {
		s.modelview.Mul(m)
	}
	return nil
}

// loadVertices transforms vertices into screen space and stores them in the
// vertex cache.  Vertices behind the eye or outside the depth range are
// marked clipped.
func (r *RCP) loadVertices(c gbi.Command) error {
	s := &r.state
	n, v0 := c.VertexRange()
	if int(v0)+int(n) > len(s.vertices) {
		return fmt.Errorf("vertices %d..%d exceed cache", v0, int(v0)+int(n)-1)
	}
	vtx, err := gbi.LoadVertices(r.mem, r.translate(c.Addr()), int(n))
	if err != nil {
		return err
	}

	mvp := s.projection.Mul4(s.modelview.Top())
	vp := s.viewport
	for i, v := range vtx {
		clip := mvp.Mul4x1(mgl32.Vec4{float32(v.X), float32(v.Y), float32(v.Z), 1})
		out := &s.vertices[int(v0)+i]
		*out = vertex{r: v.R, g: v.G, b: v.B, a: v.A}
		if clip.W() <= 0 {
			out.clipped = true
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.Z() < -1 || ndc.Z() > 1 {
			out.clipped = true
		}
		out.x = float32(vp.Min.X) + (ndc.X()+1)/2*float32(vp.Dx())
		out.y = float32(vp.Min.Y) + (1-ndc.Y())/2*float32(vp.Dy())
		out.z = (ndc.Z() + 1) / 2 * gbi.MaxZ
	}
	return nil
}
