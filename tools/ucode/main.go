package ucode

import (
	"debug/elf"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/ucode"
)

const usageString = `RSP microcode converter.

Usage: %s [flags] <elffile>

Writes the .text and .data sections of elffile to a microcode blob, which
can be passed to the render and window commands.

`

// IMEM and DMEM size
const maxSectionSize = 0x1000

var (
	flags = flag.NewFlagSet("ucode", flag.ExitOnError)

	name = flags.String("name", "", "microcode name, defaults to the file name")
	info = flags.Bool("info", false, "print information about a microcode blob instead")

	infile string
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "ucode")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() == 1 {
		infile = flags.Arg(0)
	} else {
		log.Println("expected exactly one file")
		flags.Usage()
		os.Exit(1)
	}

	if *info {
		uc, err := ucode.LoadFile(infile)
		if err != nil {
			log.Fatalln(err)
		}
		describe(os.Stdout, uc)
		return
	}

	elffile, err := elf.Open(infile)
	if err != nil {
		log.Fatalln(err)
	}
	defer elffile.Close()

	n := *name
	if n == "" {
		n = strings.TrimSuffix(filepath.Base(infile), filepath.Ext(infile))
	}
	uc, err := convert(elffile, n)
	if err != nil {
		log.Fatalln(err)
	}

	outfile := strings.TrimSuffix(infile, filepath.Ext(infile)) + ".ucode"
	w, err := os.Create(outfile)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()

	if err = uc.Store(w); err != nil {
		log.Fatalln(err)
	}
}

func convert(f *elf.File, name string) (*ucode.UCode, error) {
	section := func(name string) ([]byte, error) {
		s := f.Section(name)
		if s == nil {
			return nil, nil
		}
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			return nil, fmt.Errorf("section %s not loadable", name)
		}
		if s.Size > maxSectionSize {
			return nil, fmt.Errorf("section %s exceeds %d bytes", name, maxSectionSize)
		}
		return io.ReadAll(s.Open())
	}

	text, err := section(".text")
	if err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return nil, fmt.Errorf("no .text section")
	}
	data, err := section(".data")
	if err != nil {
		return nil, err
	}
	return ucode.NewUCode(name, rdram.Addr(f.Entry), text, data), nil
}

func describe(w io.Writer, uc *ucode.UCode) {
	fmt.Fprintf(w, "name:  %s\n", uc.Name)
	fmt.Fprintf(w, "entry: %#08x\n", uc.Entry)
	fmt.Fprintf(w, "text:  %d bytes\n", len(uc.Text))
	fmt.Fprintf(w, "data:  %d bytes\n", len(uc.Data))
}
