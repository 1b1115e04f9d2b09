// Package gbi encodes the display list commands understood by the F3DEX
// graphics microcode and the RDP.  Commands only reference memory by address,
// the data they point at (matrices, vertices, images) must be stored in RDRAM
// separately, see [Mtx] and [Vtx].
//
// Further documentation can be found in the official docs.
// https://ultra64.ca/files/documentation/online-manuals/man/pro-man/pro11/index11.1.html
package gbi

import (
	"image"

	"github.com/clktmr/n64squares/debug"
	"github.com/clktmr/n64squares/rcp/fixed"
	"github.com/clktmr/n64squares/rcp/rdram"
)

// Each command is a 64-bit dword, but needs to be stored as two words to
// get endianess right.
type Command struct{ UW, LW uint32 }

// Size of a single command in bytes.
const CommandSize = 8

type Opcode uint8

// RSP commands
const (
	OpNoop              Opcode = 0x00
	OpMatrix            Opcode = 0x01
	OpVertex            Opcode = 0x04
	OpDisplayList       Opcode = 0x06
	OpTri2              Opcode = 0xb1
	OpPopMatrix         Opcode = 0xbd
	OpMoveWord          Opcode = 0xbc
	OpSetOtherModeH     Opcode = 0xba
	OpSetOtherModeL     Opcode = 0xb9
	OpEndDisplayList    Opcode = 0xb8
	OpSetGeometryMode   Opcode = 0xb7
	OpClearGeometryMode Opcode = 0xb6
	OpTri1              Opcode = 0xbf
)

// RDP commands
const (
	OpPipeSync     Opcode = 0xe7
	OpFullSync     Opcode = 0xe9
	OpFillRect     Opcode = 0xf6
	OpSetFillColor Opcode = 0xf7
	OpSetZImage    Opcode = 0xfe
	OpSetCImage    Opcode = 0xff
)

func (c Command) Opcode() Opcode { return Opcode(c.UW >> 24) }

// Indices for the MoveWord command.
const (
	MoveWordSegment     = 0x06
	MoveWordPerspNormal = 0x0e
)

// Number of addressable segments.
const Segments = 16

// SegmentAddress builds a segmented address from a segment number and an
// offset.
func SegmentAddress(seg uint8, offset uint32) rdram.Addr {
	debug.Assert(seg < Segments, "invalid segment")
	return rdram.Addr(uint32(seg)<<24 | offset&0x00ff_ffff)
}

// Sets the base address of a segment.  Addresses referenced by following
// commands are translated via the segment table.
func Segment(seg uint8, base rdram.Addr) Command {
	debug.Assert(seg < Segments, "invalid segment")
	return Command{
		UW: uint32(OpMoveWord)<<24 | uint32(seg)*4<<8 | MoveWordSegment,
		LW: uint32(base),
	}
}

// Calls another display list.  Execution continues after this command once
// the called display list ends.
func DisplayList(addr rdram.Addr) Command {
	return Command{UW: uint32(OpDisplayList) << 24, LW: uint32(addr)}
}

func EndDisplayList() Command {
	return Command{UW: uint32(OpEndDisplayList) << 24}
}

type MatrixFlags uint8

const (
	ModelView  MatrixFlags = 0x00
	Projection MatrixFlags = 0x04

	Mul  MatrixFlags = 0x00 // multiply with the top of the stack
	Load MatrixFlags = 0x02 // replace the top of the stack

	NoPush MatrixFlags = 0x00
	Push   MatrixFlags = 0x01 // push a copy of the top before the operation
)

// Loads a matrix from addr, see [MatrixFlags] for how it's applied.
func Matrix(addr rdram.Addr, flags MatrixFlags) Command {
	return Command{
		UW: uint32(OpMatrix)<<24 | uint32(flags)<<16 | MtxSize,
		LW: uint32(addr),
	}
}

// Pops the top of the modelview matrix stack.
func PopMatrix(which MatrixFlags) Command {
	return Command{UW: uint32(OpPopMatrix) << 24, LW: uint32(which &^ (Load | Push))}
}

// Must follow a projection matrix created with a perspective projection.  The
// value is returned by [mtx.Perspective].
func PerspNormalize(norm uint16) Command {
	return Command{
		UW: uint32(OpMoveWord)<<24 | MoveWordPerspNormal,
		LW: uint32(norm),
	}
}

// Size of the microcode's vertex cache.
const VertexCacheSize = 32

// Loads n vertices from addr into the vertex cache, starting at index v0.
func Vertex(addr rdram.Addr, n, v0 uint8) Command {
	debug.Assert(int(v0)+int(n) <= VertexCacheSize, "vertex cache overflow")
	return Command{
		UW: uint32(OpVertex)<<24 | uint32(v0)*2<<16 | uint32(n)<<10 | (uint32(n)*VtxSize - 1),
		LW: uint32(addr),
	}
}

// Draws a triangle from three vertices in the vertex cache.
func Tri1(v0, v1, v2 uint8) Command {
	return Command{
		UW: uint32(OpTri1) << 24,
		LW: uint32(v0)*2<<16 | uint32(v1)*2<<8 | uint32(v2)*2,
	}
}

// Draws two triangles from vertices in the vertex cache.
func Tri2(v00, v01, v02, v10, v11, v12 uint8) Command {
	return Command{
		UW: uint32(OpTri2)<<24 | uint32(v00)*2<<16 | uint32(v01)*2<<8 | uint32(v02)*2,
		LW: uint32(v10)*2<<16 | uint32(v11)*2<<8 | uint32(v12)*2,
	}
}

type GeometryMode uint32

const (
	ZBuffer       GeometryMode = 0x0000_0001
	Shade         GeometryMode = 0x0000_0004
	ShadingSmooth GeometryMode = 0x0000_0200
	CullFront     GeometryMode = 0x0000_1000
	CullBack      GeometryMode = 0x0000_2000

	AllGeometryModes GeometryMode = 0xffff_ffff
)

func SetGeometryMode(m GeometryMode) Command {
	return Command{UW: uint32(OpSetGeometryMode) << 24, LW: uint32(m)}
}

func ClearGeometryMode(m GeometryMode) Command {
	return Command{UW: uint32(OpClearGeometryMode) << 24, LW: uint32(m)}
}

type CycleType uint32

const (
	CycleTypeOne CycleType = iota << 20
	CycleTypeTwo
	CycleTypeCopy
	CycleTypeFill
)

const (
	shiftCycleType  = 20
	shiftRenderMode = 3
)

// Selects how many cycles the RDP spends per pixel.  Fill mode is required
// for FillRectangle.
func SetCycleType(c CycleType) Command {
	return Command{
		UW: uint32(OpSetOtherModeH)<<24 | shiftCycleType<<8 | 2,
		LW: uint32(c),
	}
}

// Blender and coverage settings of the lower other modes word.
type RenderMode uint32

const (
	AntiAlias     RenderMode = 0x0008
	ZCompare      RenderMode = 0x0010
	ZUpdate       RenderMode = 0x0020
	ImageRead     RenderMode = 0x0040
	AlphaCvgSel   RenderMode = 0x2000
	ForceBlend    RenderMode = 0x4000
	blendCycle1   RenderMode = 0x0044_0000 // CLR_IN*A_IN + CLR_MEM*A_MEM
	blendCycle2   RenderMode = 0x0011_0000
	renderModeMsk RenderMode = 0x1fff_fff8

	AAZBOpaSurf  = AntiAlias | ZCompare | ZUpdate | ImageRead | AlphaCvgSel | blendCycle1
	AAZBOpaSurf2 = AntiAlias | ZCompare | ZUpdate | ImageRead | AlphaCvgSel | blendCycle2
)

func SetRenderMode(c0, c1 RenderMode) Command {
	return Command{
		UW: uint32(OpSetOtherModeL)<<24 | shiftRenderMode<<8 | 29,
		LW: uint32((c0 | c1) & renderModeMsk),
	}
}

type ImageFormat uint32

const (
	RGBA ImageFormat = iota << 21
	YUV
	ColorIdx // Color Palette
	IA       // Intensity with alpha
	I        // Intensity
)

type BitDepth uint32

const (
	BBP4 BitDepth = iota << 19
	BBP8
	BBP16
	BBP32
)

// Sets the framebuffer to render the final image into.
func SetColorImage(addr rdram.Addr, width int, format ImageFormat, bbp BitDepth) Command {
	debug.Assert(width > 0 && width <= 1<<12, "invalid image width")
	return Command{
		UW: uint32(OpSetCImage)<<24 | uint32(format) | uint32(bbp) | uint32(width-1),
		LW: uint32(addr),
	}
}

// Sets the z-buffer used for depth compare and update.
func SetDepthImage(addr rdram.Addr) Command {
	return Command{UW: uint32(OpSetZImage) << 24, LW: uint32(addr)}
}

// Sets the raw fill value for the next FillRectangle() call.  For 16-bit
// images the value holds two pixels.
func SetFillColor(packed uint32) Command {
	return Command{UW: uint32(OpSetFillColor) << 24, LW: packed}
}

// Draws a rectangle filled with the value set by SetFillColor().  The
// rectangle includes its Max coordinates, as the hardware does in fill mode.
func FillRectangle(r image.Rectangle) Command {
	ulx, uly := fixed.UInt14_2U(r.Min.X), fixed.UInt14_2U(r.Min.Y)
	lrx, lry := fixed.UInt14_2U(r.Max.X), fixed.UInt14_2U(r.Max.Y)
	return Command{
		UW: uint32(OpFillRect)<<24 | uint32(lrx&0xfff)<<12 | uint32(lry&0xfff),
		LW: uint32(ulx&0xfff)<<12 | uint32(uly&0xfff),
	}
}

// Waits until all previously started primitives finished rendering.  Required
// before changing state that is used by primitives in flight.
func PipeSync() Command {
	return Command{UW: uint32(OpPipeSync) << 24}
}

// Waits until all previous commands have finished reading and writing to
// RDRAM.  Raises the DP interrupt, which signals the end of the task.
func FullSync() Command {
	return Command{UW: uint32(OpFullSync) << 24}
}

// Maximum value of the z-buffer.
const MaxZ = 0x3fff

// Packs a depth value and its delta for z-buffer fills.
func PackZDZ(z, dz uint16) uint16 { return z<<2 | dz }

// Packs a 5:5:5:1 color.
func PackRGBA5551(r, g, b, a uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>3)<<6 | uint16(b>>3)<<1 | uint16(a>>7)
}

// Repeats a 16-bit pixel in both halves of a fill value.
func Fill16(v uint16) uint32 { return uint32(v)<<16 | uint32(v) }
