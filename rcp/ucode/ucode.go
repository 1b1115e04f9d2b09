// Package ucode describes the microcodes a graphics task can be executed
// with.  Microcodes are opaque to the CPU, they are loaded by reference and
// never inspected.
package ucode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/clktmr/n64squares/rcp/rdram"
)

// Selector picks the microcode used to execute a graphics task.
type Selector uint8

const (
	F3DEX    Selector = iota // F3DEX with near clipping
	F3DEXNoN                 // F3DEX without near clipping
	S2DEX                    // 2D sprites and backgrounds
)

var selectorNames = [...]string{
	F3DEX:    "F3DEX",
	F3DEXNoN: "F3DEX.NoN",
	S2DEX:    "S2DEX",
}

func (s Selector) String() string {
	if int(s) < len(selectorNames) {
		return selectorNames[s]
	}
	return fmt.Sprintf("Selector(%d)", uint8(s))
}

var ErrUnknown = errors.New("ucode: unknown microcode")

type UCode struct {
	Name string

	Entry rdram.Addr // initial value of RSP PC register
	Text  []byte     // instructions copied to IMEM
	Data  []byte     // data copied to DMEM
}

func NewUCode(name string, entry rdram.Addr, text []byte, data []byte) *UCode {
	return &UCode{
		Name:  name,
		Entry: entry,
		Text:  append([]byte(nil), text...),
		Data:  append([]byte(nil), data...),
	}
}

// Table maps selectors to loaded microcodes.
type Table map[Selector]*UCode

func (t Table) Lookup(s Selector) (*UCode, error) {
	if uc, ok := t[s]; ok {
		return uc, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknown, s)
}

// LoadFile reads a microcode blob written by [UCode.Store].
func LoadFile(path string) (*UCode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	uc, err := Load(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("ucode: %s: %w", path, err)
	}
	return uc, nil
}

func Load(r io.Reader) (ucode *UCode, err error) {
	ucode = &UCode{}
	load := func(data any) {
		if err != nil {
			return
		}
		err = binary.Read(r, binary.BigEndian, data)
	}
	var size uint32
	load(&size)
	name := make([]byte, size)
	load(&name)
	ucode.Name = string(name)
	load(&ucode.Entry)

	load(&size)
	ucode.Text = make([]byte, size)
	load(&ucode.Text)

	load(&size)
	ucode.Data = make([]byte, size)
	load(&ucode.Data)
	return
}

func (ucode *UCode) Store(w io.Writer) (err error) {
	store := func(data any) {
		if err != nil {
			return
		}
		err = binary.Write(w, binary.BigEndian, data)
	}
	store(uint32(len(ucode.Name)))
	store([]byte(ucode.Name))
	store(ucode.Entry)
	store(uint32(len(ucode.Text)))
	store(ucode.Text)
	store(uint32(len(ucode.Data)))
	store(ucode.Data)
	return
}
