package gbi

import (
	"encoding/binary"
	"io"

	"github.com/clktmr/n64squares/rcp/fixed"
	"github.com/clktmr/n64squares/rcp/rdram"

	"github.com/go-gl/mathgl/mgl32"
)

// Sizes of the structures referenced from commands, in bytes.
const (
	MtxSize = 64
	VtxSize = 16
)

// Mtx is a 4x4 matrix as read by the RSP.  The layout stores the integer
// parts of all elements, followed by the fractional parts.
//
// The RSP multiplies row vectors from the left, so the element order of a
// column major mgl32.Mat4 can be used as is.
type Mtx struct {
	Int  [16]int16
	Frac [16]uint16
}

func NewMtx(m mgl32.Mat4) (p Mtx) {
	for i, f := range m {
		x := fixed.Int16_16F(f)
		p.Int[i] = x.Int()
		p.Frac[i] = x.Frac()
	}
	return
}

func (p *Mtx) Mat4() (m mgl32.Mat4) {
	for i := range m {
		m[i] = fixed.Int16_16Parts(p.Int[i], p.Frac[i]).Float()
	}
	return
}

// Store writes the matrix to RDRAM at addr.
func (p *Mtx) Store(mem io.WriterAt, addr rdram.Addr) error {
	return binary.Write(io.NewOffsetWriter(mem, int64(addr)), binary.BigEndian, p)
}

func LoadMtx(mem io.ReaderAt, addr rdram.Addr) (p Mtx, err error) {
	err = binary.Read(io.NewSectionReader(mem, int64(addr), MtxSize), binary.BigEndian, &p)
	return
}

// Vtx is a single vertex with texture coordinates and shading color.
type Vtx struct {
	X, Y, Z    int16
	Flag       uint16
	S, T       int16
	R, G, B, A uint8
}

func StoreVertices(mem io.WriterAt, addr rdram.Addr, v []Vtx) error {
	return binary.Write(io.NewOffsetWriter(mem, int64(addr)), binary.BigEndian, v)
}

func LoadVertices(mem io.ReaderAt, addr rdram.Addr, n int) (v []Vtx, err error) {
	v = make([]Vtx, n)
	err = binary.Read(io.NewSectionReader(mem, int64(addr), int64(n*VtxSize)), binary.BigEndian, v)
	return
}

// StoreCommands writes a display list to RDRAM at addr.
func StoreCommands(mem io.WriterAt, addr rdram.Addr, cmds []Command) error {
	return binary.Write(io.NewOffsetWriter(mem, int64(addr)), binary.BigEndian, cmds)
}

// LoadCommand reads a single command from RDRAM.
func LoadCommand(mem io.ReaderAt, addr rdram.Addr) (c Command, err error) {
	err = binary.Read(io.NewSectionReader(mem, int64(addr), CommandSize), binary.BigEndian, &c)
	return
}

// Put encodes c into p, which must be at least CommandSize long.
func (c Command) Put(p []byte) {
	binary.BigEndian.PutUint32(p[0:], c.UW)
	binary.BigEndian.PutUint32(p[4:], c.LW)
}
