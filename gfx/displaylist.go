// Package gfx builds graphics tasks for the RCP.
//
// A [Pool] holds a fixed number of [Task]s, each owning a display list and
// the matrices it references.  Tasks are claimed round-robin, filled by an
// [Encoder] and handed to a [Submitter].  While the RCP executes one task the
// CPU prepares the next.
package gfx

import (
	"encoding/binary"
	"fmt"

	"github.com/clktmr/n64squares/debug"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
)

// DisplayList is a fixed size command buffer in RDRAM.  Appending only
// advances the cursor until the next Reset.
type DisplayList struct {
	buf  []byte
	addr rdram.Addr
	cap  int
	cur  int
}

func NewDisplayList(mem *rdram.RDRAM, capacity int) (*DisplayList, error) {
	addr, err := mem.Alloc(capacity*gbi.CommandSize, rdram.CacheLineSize)
	if err != nil {
		return nil, err
	}
	buf, err := mem.Slice(addr, capacity*gbi.CommandSize)
	if err != nil {
		return nil, err
	}
	return &DisplayList{buf: buf, addr: addr, cap: capacity}, nil
}

// Reset rewinds the cursor to the start of the buffer.
func (dl *DisplayList) Reset() { dl.cur = 0 }

// Append writes commands at the cursor.  Commands past the capacity are
// dropped but still counted, so Check can report the overrun.
func (dl *DisplayList) Append(cmds ...gbi.Command) {
	for _, c := range cmds {
		debug.AssertIndex(dl.cur, dl.cap, "display list overrun")
		if dl.cur < dl.cap {
			c.Put(dl.buf[dl.cur*gbi.CommandSize:])
		}
		dl.cur++
	}
}

// Len returns the number of appended commands.
func (dl *DisplayList) Len() int { return dl.cur }

// Cap returns the capacity in commands.
func (dl *DisplayList) Cap() int { return dl.cap }

// Addr returns the RDRAM address of the first command.
func (dl *DisplayList) Addr() rdram.Addr { return dl.addr }

// Size returns the length of the appended commands in bytes.
func (dl *DisplayList) Size() int { return dl.cur * gbi.CommandSize }

// Check fails if the display list doesn't fit its buffer.  The RCP must never
// see a display list that failed this check.
func (dl *DisplayList) Check() error {
	if dl.cur >= dl.cap {
		return fmt.Errorf("%w: %d commands, capacity %d", ErrOverrun, dl.cur, dl.cap)
	}
	return nil
}

// Commands decodes the written commands.
func (dl *DisplayList) Commands() []gbi.Command {
	n := min(dl.cur, dl.cap)
	cmds := make([]gbi.Command, n)
	for i := range cmds {
		b := dl.buf[i*gbi.CommandSize:]
		cmds[i].UW = binary.BigEndian.Uint32(b[0:])
		cmds[i].LW = binary.BigEndian.Uint32(b[4:])
	}
	return cmds
}
