package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/n64squares/tools/dump"
	"github.com/clktmr/n64squares/tools/render"
	"github.com/clktmr/n64squares/tools/ucode"
	"github.com/clktmr/n64squares/tools/window"
)

const usageString = `squares renders rotating squares with a software N64 RCP.

Usage:

	%s <command> [arguments]

The commands are:

	window   show the demo in a window
	render   render frames without a window and save them as PNG
	dump     disassemble the display list of a frame
	ucode    convert an RSP microcode elf to a microcode blob
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "window":
		window.Main(flag.Args())
	case "render":
		render.Main(flag.Args())
	case "dump":
		dump.Main(flag.Args())
	case "ucode":
		ucode.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
