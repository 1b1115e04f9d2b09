package gbi

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/sigurn/crc8"
)

// Address referenced by commands that carry one in their lower word.
func (c Command) Addr() rdram.Addr { return rdram.Addr(c.LW) }

// MatrixFlags of a Matrix command.
func (c Command) MatrixFlags() MatrixFlags { return MatrixFlags(c.UW >> 16) }

// VertexRange returns count and first cache index of a Vertex command.
func (c Command) VertexRange() (n, v0 uint8) {
	return uint8(c.UW>>10) & 0x3f, uint8(c.UW>>16) / 2
}

// Triangles returns the vertex indices of a Tri1 or Tri2 command.  Tri1 only
// returns a single triangle.
func (c Command) Triangles() [][3]uint8 {
	split := func(w uint32) [3]uint8 {
		return [3]uint8{uint8(w>>16) / 2, uint8(w>>8) / 2, uint8(w) / 2}
	}
	switch c.Opcode() {
	case OpTri1:
		return [][3]uint8{split(c.LW)}
	case OpTri2:
		return [][3]uint8{split(c.UW), split(c.LW)}
	}
	return nil
}

// MoveWord returns the index and offset of a MoveWord command.
func (c Command) MoveWord() (index uint8, offset uint16) {
	return uint8(c.UW), uint16(c.UW >> 8)
}

// Rectangle of a FillRectangle command.
func (c Command) Rectangle() image.Rectangle {
	return image.Rect(
		int(c.LW>>12&0xfff)>>2, int(c.LW&0xfff)>>2,
		int(c.UW>>12&0xfff)>>2, int(c.UW&0xfff)>>2,
	)
}

// ImageWidth of a SetColorImage command.
func (c Command) ImageWidth() int { return int(c.UW&0xfff) + 1 }

// ImageFormat of a SetColorImage command.
func (c Command) ImageFormat() (ImageFormat, BitDepth) {
	return ImageFormat(c.UW & (0x7 << 21)), BitDepth(c.UW & (0x3 << 19))
}

// OtherMode returns shift, length and value of a SetOtherMode command.
func (c Command) OtherMode() (shift, length uint8, value uint32) {
	return uint8(c.UW >> 8), uint8(c.UW), c.LW
}

var opNames = map[Opcode]string{
	OpNoop:              "Noop",
	OpMatrix:            "Matrix",
	OpVertex:            "Vertex",
	OpDisplayList:       "DisplayList",
	OpTri1:              "Tri1",
	OpTri2:              "Tri2",
	OpPopMatrix:         "PopMatrix",
	OpMoveWord:          "MoveWord",
	OpSetOtherModeH:     "SetOtherModeH",
	OpSetOtherModeL:     "SetOtherModeL",
	OpEndDisplayList:    "EndDisplayList",
	OpSetGeometryMode:   "SetGeometryMode",
	OpClearGeometryMode: "ClearGeometryMode",
	OpPipeSync:          "PipeSync",
	OpFullSync:          "FullSync",
	OpFillRect:          "FillRectangle",
	OpSetFillColor:      "SetFillColor",
	OpSetZImage:         "SetDepthImage",
	OpSetCImage:         "SetColorImage",
}

func (op Opcode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%#02x)", uint8(op))
}

// String disassembles the command.
func (c Command) String() string {
	op := c.Opcode()
	switch op {
	case OpMatrix:
		f := c.MatrixFlags()
		var sb strings.Builder
		if f&Projection != 0 {
			sb.WriteString("Projection")
		} else {
			sb.WriteString("ModelView")
		}
		if f&Load != 0 {
			sb.WriteString("|Load")
		} else {
			sb.WriteString("|Mul")
		}
		if f&Push != 0 {
			sb.WriteString("|Push")
		}
		return fmt.Sprintf("%v %#08x %s", op, c.LW, sb.String())
	case OpVertex:
		n, v0 := c.VertexRange()
		return fmt.Sprintf("%v %#08x n=%d v0=%d", op, c.LW, n, v0)
	case OpTri1, OpTri2:
		return fmt.Sprintf("%v %v", op, c.Triangles())
	case OpMoveWord:
		idx, off := c.MoveWord()
		switch idx {
		case MoveWordSegment:
			return fmt.Sprintf("Segment %d %#08x", off/4, c.LW)
		case MoveWordPerspNormal:
			return fmt.Sprintf("PerspNormalize %#04x", c.LW)
		}
	case OpFillRect:
		return fmt.Sprintf("%v %v", op, c.Rectangle())
	case OpSetCImage:
		return fmt.Sprintf("%v %#08x width=%d", op, c.LW, c.ImageWidth())
	case OpDisplayList, OpSetZImage:
		return fmt.Sprintf("%v %#08x", op, c.LW)
	case OpPipeSync, OpFullSync, OpEndDisplayList, OpNoop:
		return op.String()
	}
	return fmt.Sprintf("%v %#08x %#08x", op, c.UW, c.LW)
}

// Disassemble writes one line per command to w.
func Disassemble(w io.Writer, base rdram.Addr, cmds []Command) error {
	for i, c := range cmds {
		_, err := fmt.Fprintf(w, "%#08x: %08x %08x  %v\n", base+rdram.Addr(i*CommandSize), c.UW, c.LW, c)
		if err != nil {
			return err
		}
	}
	return nil
}

var checksumTable = crc8.MakeTable(crc8.CRC8)

// Checksum calculates a CRC-8 over the encoded display list, e.g. to compare
// frames in golden tests or logs.
func Checksum(cmds []Command) uint8 {
	crc := crc8.Init(checksumTable)
	var buf [CommandSize]byte
	for _, c := range cmds {
		c.Put(buf[:])
		crc = crc8.Update(crc, buf[:], checksumTable)
	}
	return crc8.Complete(crc, checksumTable)
}
