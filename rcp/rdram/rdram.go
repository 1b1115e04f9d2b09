// Package rdram simulates the main memory shared by the CPU and the RCP.
//
// Everything the RCP reads or writes while executing a graphics task lives
// here: display lists, matrices, vertices, color images and the z-buffer.
// Commands reference this memory by physical address, so a task handed to
// the RCP is just a start address and a length in bytes.
package rdram

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Default size of the simulated memory, same as a console without expansion
// pak.
const DefaultSize = 4 << 20

// Allocations are aligned to at least CacheLineSize, which is what the RCP's
// DMA engines expect.
const CacheLineSize = 16

// The first bytes are never handed out, so the zero Addr never references a
// valid allocation.
const reserved = 0x400

// Addr represents a physical memory address
type Addr uint32

var (
	ErrOutOfMemory = errors.New("rdram: out of memory")
	ErrOutOfBounds = errors.New("rdram: access out of bounds")
)

type RDRAM struct {
	mu  sync.Mutex
	mem []byte
	top int
}

// New returns a zeroed memory of the given size in bytes.
func New(size int) *RDRAM {
	return &RDRAM{mem: make([]byte, size), top: reserved}
}

func (m *RDRAM) Size() int { return len(m.mem) }

// Used returns the number of bytes allocated so far.
func (m *RDRAM) Used() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top
}

// Alloc reserves n bytes aligned to align, which must be zero or a power of
// two.  Allocations are at least aligned to a cache line.  Memory is never
// freed; allocations are done once on startup.
func (m *RDRAM) Alloc(n int, align int) (Addr, error) {
	if align < 0 || align&(align-1) != 0 {
		return 0, fmt.Errorf("rdram: alignment %d not a power of two", align)
	}
	align = max(align, CacheLineSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	start := (m.top + align - 1) &^ (align - 1)
	if n < 0 || start+n > len(m.mem) {
		return 0, fmt.Errorf("%w: %d bytes requested, %d free", ErrOutOfMemory, n, len(m.mem)-start)
	}
	m.top = start + n
	return Addr(start), nil
}

// Slice returns the memory region [addr, addr+n) without copying. Writes to
// the returned slice are visible to every other user of the region.
func (m *RDRAM) Slice(addr Addr, n int) ([]byte, error) {
	if n < 0 || int(addr) > len(m.mem) || int(addr)+n > len(m.mem) {
		return nil, fmt.Errorf("%w: %#08x+%d", ErrOutOfBounds, addr, n)
	}
	return m.mem[addr : int(addr)+n : int(addr)+n], nil
}

// ReadAt implements io.ReaderAt.
func (m *RDRAM) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off >= int64(len(m.mem)) {
		return 0, io.EOF
	}
	n = copy(p, m.mem[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

// WriteAt implements io.WriterAt.
func (m *RDRAM) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.mem)) {
		return 0, fmt.Errorf("%w: %#08x+%d", ErrOutOfBounds, off, len(p))
	}
	return copy(m.mem[off:], p), nil
}
