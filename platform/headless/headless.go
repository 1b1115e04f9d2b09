// Package headless runs the demo without video output.  A ticker stands in
// for the vertical blank and the software RCP executes tasks on its own
// goroutine.
package headless

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clktmr/n64squares/rcp/soft"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Hz    int // refresh rate, unthrottled if zero
	Ticks int // number of refreshes before Run returns, unlimited if zero

	// Lockstep waits for all pending tasks before each refresh, so every
	// refresh renders a frame.
	Lockstep bool

	// AfterTick is called after the frame callback returned.
	AfterTick func(tick int)

	Logger *slog.Logger
}

type Platform struct {
	cfg    Config
	log    *slog.Logger
	rcp    *soft.RCP
	frame  func(pending int)
	output bool
	ticks  int
}

func New(rcp *soft.RCP, cfg Config) *Platform {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Platform{cfg: cfg, log: cfg.Logger.With("component", "headless"), rcp: rcp}
}

func (p *Platform) InitDisplay() error {
	p.log.Info("display initialized", "hz", p.cfg.Hz, "ticks", p.cfg.Ticks)
	return nil
}

func (p *Platform) SetFrameCallback(fn func(pending int)) { p.frame = fn }

func (p *Platform) EnableOutput() { p.output = true }

// Ticks returns the number of refreshes so far.
func (p *Platform) Ticks() int { return p.ticks }

func (p *Platform) Run(ctx context.Context) error {
	if p.frame == nil {
		return errors.New("headless: no frame callback")
	}
	if !p.output {
		p.log.Warn("running with output disabled")
	}
	rcpCtx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := p.rcp.Run(rcpCtx)
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil // stopped after the last tick
		}
		return err
	})

	g.Go(func() error {
		defer stop()
		var tick <-chan time.Time
		if p.cfg.Hz > 0 {
			ticker := time.NewTicker(time.Second / time.Duration(p.cfg.Hz))
			defer ticker.Stop()
			tick = ticker.C
		}

		for p.cfg.Ticks == 0 || p.ticks < p.cfg.Ticks {
			if tick != nil {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-tick:
				}
			} else if err := gctx.Err(); err != nil {
				return err
			}

			if p.cfg.Lockstep {
				if err := p.rcp.Drain(gctx); err != nil {
					return err
				}
			}
			p.frame(p.rcp.Pending())
			p.ticks++
			if p.cfg.AfterTick != nil {
				if p.cfg.Lockstep {
					if err := p.rcp.Drain(gctx); err != nil {
						return err
					}
				}
				p.cfg.AfterTick(p.ticks)
			}
		}

		err := p.rcp.Drain(gctx)
		p.log.Info("done", "ticks", p.ticks, "stats", p.rcp.Stats())
		return err
	})

	return g.Wait()
}
