package window

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/clktmr/n64squares/console"
	dconsole "github.com/clktmr/n64squares/drivers/console"
	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/machine"
	"github.com/clktmr/n64squares/platform/window"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/stage"
)

const usageString = `Show the demo in a window.

Usage: %s [flags]

Press A or space to reverse the rotation, F1 toggles the log console.

`

var (
	flags = flag.NewFlagSet("window", flag.ExitOnError)

	scale      = flags.Int("scale", 2, "window scaling factor")
	background = flags.String("bg", "black", "background color name")
	video      = flags.String("video", "NTSC", "video standard, sets the refresh rate")
	ucodefile  = flags.String("ucode", "", "microcode blob to use for F3DEX tasks")
	hud        = flags.Bool("hud", true, "show frame rate bar")
	verbose    = flags.Bool("v", false, "log every frame")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "window")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logs := dconsole.NewConsole()
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logs), &slog.HandlerOptions{Level: level}))

	cfg := machine.DefaultConfig()
	cfg.Logger = logger
	bg, err := stage.ParseColor(*background)
	if err != nil {
		log.Fatalln(err)
	}
	cfg.Stage.Background = bg
	if cfg.Video, err = machine.ParseVideo(*video); err != nil {
		log.Fatalln(err)
	}
	if *ucodefile != "" {
		if err := cfg.InstallUCode(ucode.F3DEX, *ucodefile); err != nil {
			log.Fatalln(err)
		}
	}
	input := &controller.Latch{}
	cfg.Input = input

	m, err := machine.New(cfg)
	if err != nil {
		log.Fatalln(err)
	}

	wcfg := window.DefaultConfig()
	wcfg.Scale = *scale
	wcfg.Hz = cfg.Video.Hz()
	wcfg.HUD = *hud
	wcfg.Input = input
	wcfg.Console = logs
	wcfg.Logger = logger
	p := window.New(m.RCP, m.Framebuffer, wcfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := console.Run(ctx, p, m.Stage); err != nil && ctx.Err() == nil {
		log.Fatalln(err)
	}
}
