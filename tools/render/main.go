package render

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/clktmr/n64squares/console"
	"github.com/clktmr/n64squares/machine"
	"github.com/clktmr/n64squares/platform/headless"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/stage"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

const usageString = `Render frames without a window.

Usage: %s [flags]

Runs the demo for the given number of frames and writes the last one, or
every one with -all, as PNG.

`

var (
	flags = flag.NewFlagSet("render", flag.ExitOnError)

	frames     = flags.Int("frames", 1, "number of frames to render")
	output     = flags.String("o", "frame.png", "output file")
	all        = flags.Bool("all", false, "write every frame, numbered")
	scale      = flags.Int("scale", 1, "integer upscaling factor")
	format     = flags.String("format", "RGBA", "PNG color format, RGBA or CI8")
	dither     = flags.Bool("dither", false, "enable Floyd-Steinberg error diffusion for CI8")
	palette    = flags.Int("palette", 256, "number of colors in CI8 format")
	background = flags.String("bg", "black", "background color name")
	video      = flags.String("video", "NTSC", "video standard")
	ucodefile  = flags.String("ucode", "", "microcode blob to use for F3DEX tasks")
	verbose    = flags.Bool("v", false, "log every frame")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "render")
	flags.PrintDefaults()
}

type options struct {
	Frames     int
	Scale      int
	Format     string
	Dither     bool
	Palette    int
	Background string
	Video      string
	UCode      string
	Logger     *slog.Logger

	// Frame is called with every rendered frame.
	Frame func(n int, img image.Image) error
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	opts := options{
		Frames:     *frames,
		Scale:      *scale,
		Format:     *format,
		Dither:     *dither,
		Palette:    *palette,
		Background: *background,
		Video:      *video,
		UCode:      *ucodefile,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}

	var last image.Image
	opts.Frame = func(n int, img image.Image) error {
		if *all {
			return save(numbered(*output, n), img)
		}
		last = img
		return nil
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatalln(err)
	}
	if last != nil {
		if err := save(*output, last); err != nil {
			log.Fatalln(err)
		}
	}
}

func numbered(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%04d%s", strings.TrimSuffix(path, ext), n, ext)
}

func save(path string, img image.Image) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func run(ctx context.Context, opts options) error {
	if opts.Frames < 1 {
		return fmt.Errorf("render: invalid number of frames %d", opts.Frames)
	}

	cfg := machine.DefaultConfig()
	cfg.Logger = opts.Logger
	bg, err := stage.ParseColor(opts.Background)
	if err != nil {
		return err
	}
	cfg.Stage.Background = bg
	if cfg.Video, err = machine.ParseVideo(opts.Video); err != nil {
		return err
	}
	if opts.UCode != "" {
		if err := cfg.InstallUCode(ucode.F3DEX, opts.UCode); err != nil {
			return err
		}
	}

	m, err := machine.New(cfg)
	if err != nil {
		return err
	}

	var ferr error
	p := headless.New(m.RCP, headless.Config{
		Ticks:    opts.Frames,
		Lockstep: true,
		Logger:   opts.Logger,
		AfterTick: func(tick int) {
			if ferr != nil || opts.Frame == nil {
				return
			}
			img, err := convert(m.Framebuffer.Snapshot(), opts)
			if err == nil {
				err = opts.Frame(tick, img)
			}
			ferr = err
		},
	})
	if err := console.Run(ctx, p, m.Stage); err != nil {
		return err
	}
	if ferr != nil {
		return ferr
	}

	st := m.RCP.Stats()
	opts.Logger.Info("rendered", "frames", m.Stage.Frames(), "skipped", m.Stage.Skipped(),
		"triangles", st.Triangles, "busy", st.Busy)
	if st.Faults > 0 {
		return fmt.Errorf("render: %d tasks faulted", st.Faults)
	}
	return nil
}

// convert scales img and converts it to the output format.
func convert(img *image.RGBA, opts options) (image.Image, error) {
	var dst image.Image = img
	if opts.Scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*opts.Scale, b.Dy()*opts.Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		dst = scaled
	}

	switch opts.Format {
	case "RGBA":
		return dst, nil
	case "CI8":
		if opts.Palette < 1 || opts.Palette > 256 {
			return nil, fmt.Errorf("render: invalid palette size %d", opts.Palette)
		}
		q := quantize.MedianCutQuantizer{}
		p := q.Quantize(make(color.Palette, 0, opts.Palette), dst)
		ci := image.NewPaletted(dst.Bounds(), p)

		var d draw.Drawer = draw.Src
		if opts.Dither {
			d = draw.FloydSteinberg
		}
		d.Draw(ci, ci.Bounds(), dst, dst.Bounds().Min)
		return ci, nil
	}
	return nil, fmt.Errorf("render: unsupported format %q", opts.Format)
}
