package dump

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/clktmr/n64squares/machine"
	"github.com/clktmr/n64squares/rcp"
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
)

const usageString = `Display list disassembler.

Usage: %s [flags]

Encodes a single frame and prints its display list together with a CRC-8
checksum of the commands.

`

var (
	flags = flag.NewFlagSet("dump", flag.ExitOnError)

	frame    = flags.Int("frame", 0, "advance the scene by this many frames first")
	setup    = flags.Bool("setup", false, "also print the setup display lists")
	execute  = flags.Bool("run", false, "execute the frame and print RCP statistics")
	sumsOnly = flags.Bool("sum", false, "only print the checksum")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "dump")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	err := dump(os.Stdout, options{
		Frame:    *frame,
		Setup:    *setup,
		Execute:  *execute,
		SumsOnly: *sumsOnly,
	})
	if err != nil {
		log.Fatalln(err)
	}
}

type options struct {
	Frame    int
	Setup    bool
	Execute  bool
	SumsOnly bool
}

func dump(w io.Writer, opts options) error {
	cfg := machine.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m, err := machine.New(cfg)
	if err != nil {
		return err
	}

	// Busy RCP, only the scene advances.
	for range opts.Frame {
		m.Stage.Frame(1)
	}

	enc := m.Stage.Encoder()
	task, err := m.Stage.Pool().Next()
	if err != nil {
		return err
	}
	start, n, err := enc.Encode(task, m.Stage.Scene().Objects)
	if err != nil {
		return err
	}
	cmds := task.DL.Commands()[:n]

	if opts.Setup && !opts.SumsOnly {
		for _, dl := range []struct {
			name string
			addr rdram.Addr
		}{{"rsp", enc.Setup.RSP}, {"rdp", enc.Setup.RDP}} {
			setup, err := load(m.Memory, dl.addr)
			if err != nil {
				return fmt.Errorf("%s setup: %w", dl.name, err)
			}
			fmt.Fprintf(w, "%s setup:\n", dl.name)
			if err := gbi.Disassemble(w, dl.addr, setup); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}

	if !opts.SumsOnly {
		fmt.Fprintf(w, "frame %d, slot %d:\n", opts.Frame, task.Index)
		if err := gbi.Disassemble(w, start, cmds); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%d commands, %d bytes, crc8 %#02x\n", n, n*gbi.CommandSize, gbi.Checksum(cmds))

	if opts.Execute {
		m.Stage.Pool().Submitted(task)
		if err := m.RCP.Submit(start, n*gbi.CommandSize, cfg.Stage.UCode, cfg.Stage.Policy); err != nil {
			return err
		}
		m.RCP.Step()
		st := m.RCP.Stats()
		fmt.Fprintf(w, "tasks %d, faults %d, commands %d, triangles %d, busy %v\n",
			st.Tasks, st.Faults, st.Commands, st.Triangles, st.Busy)

		intr := m.RCP.Interrupts()
		for f := rcp.InterruptFlag(1); f < rcp.InterruptFlagLast; f <<= 1 {
			if n := intr.Count(f); n > 0 {
				fmt.Fprintf(w, "interrupt %v: %d\n", f, n)
			}
		}
	}
	return nil
}

// load reads a display list up to and including its end marker.
func load(mem io.ReaderAt, addr rdram.Addr) ([]gbi.Command, error) {
	var cmds []gbi.Command
	for {
		c, err := gbi.LoadCommand(mem, addr)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
		if c.Opcode() == gbi.OpEndDisplayList {
			return cmds, nil
		}
		addr += gbi.CommandSize
	}
}
