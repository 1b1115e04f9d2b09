// Package machine assembles the emulated console: RDRAM, the double buffered
// framebuffer, the software RCP and the stage rendering into them.
package machine

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/clktmr/n64squares/drivers/controller"
	"github.com/clktmr/n64squares/framebuffer"
	"github.com/clktmr/n64squares/rcp/rdram"
	"github.com/clktmr/n64squares/rcp/soft"
	"github.com/clktmr/n64squares/rcp/ucode"
	"github.com/clktmr/n64squares/stage"
)

type VideoType uint32

const (
	VideoPAL  VideoType = 0
	VideoNTSC VideoType = 1
	VideoMPAL VideoType = 2
)

func (v VideoType) String() string {
	switch v {
	case VideoPAL:
		return "PAL"
	case VideoNTSC:
		return "NTSC"
	case VideoMPAL:
		return "MPAL"
	}
	return fmt.Sprintf("VideoType(%d)", uint32(v))
}

// ParseVideo parses the name of a video standard as returned by String.
func ParseVideo(s string) (VideoType, error) {
	for _, v := range []VideoType{VideoPAL, VideoNTSC, VideoMPAL} {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("machine: unknown video standard %q", s)
}

// Hz returns the refresh rate of the video standard.
func (v VideoType) Hz() int {
	if v == VideoPAL {
		return 50
	}
	return 60
}

type Config struct {
	Memory int // RDRAM size in bytes
	Video  VideoType
	Stage  stage.Config
	RCP    soft.Config // Display and Viewport are set by New
	Input  controller.Source
	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Memory: rdram.DefaultSize,
		Video:  VideoNTSC,
		Stage:  stage.DefaultConfig(),
		RCP:    soft.DefaultConfig(),
		Logger: slog.Default(),
	}
}

// InstallUCode loads a microcode blob from path and uses it for tasks
// selecting sel.
func (cfg *Config) InstallUCode(sel ucode.Selector, path string) error {
	uc, err := ucode.LoadFile(path)
	if err != nil {
		return err
	}
	table := make(ucode.Table, len(cfg.RCP.UCodes)+1)
	maps.Copy(table, cfg.RCP.UCodes)
	table[sel] = uc
	cfg.RCP.UCodes = table
	return nil
}

type Machine struct {
	Video       VideoType
	Memory      *rdram.RDRAM
	Framebuffer *framebuffer.Framebuffer
	RCP         *soft.RCP
	Stage       *stage.Stage
}

// New allocates all buffers and connects the RCP's completion to the stage.
func New(cfg Config) (*Machine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Input == nil {
		cfg.Input = &controller.Script{}
	}
	cfg.Stage.Logger = cfg.Logger
	cfg.RCP.Logger = cfg.Logger

	mem := rdram.New(cfg.Memory)
	fb, err := framebuffer.NewFramebuffer(mem, cfg.Stage.Screen)
	if err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	cfg.RCP.Display = fb
	cfg.RCP.Viewport = cfg.Stage.Screen
	r := soft.New(mem, cfg.RCP)

	s, err := stage.New(mem, cfg.Stage, fb, r, cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	r.OnComplete(s.Complete)

	cfg.Logger.Info("machine ready", "video", cfg.Video, "rdram", cfg.Memory,
		"used", mem.Used(), "screen", cfg.Stage.Screen)
	return &Machine{cfg.Video, mem, fb, r, s}, nil
}
