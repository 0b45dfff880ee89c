package main

import (
	"fmt"

	"github.com/BeatGlow/badge"
	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/internal/config"
	"github.com/BeatGlow/badge/region"
	"github.com/BeatGlow/badge/render"
	"github.com/BeatGlow/badge/scheduler"
	"github.com/BeatGlow/badge/screen"
	"github.com/BeatGlow/badge/share"
)

// system is the display core wired to a panel.
type system struct {
	surface *share.Surface
	machine *screen.Machine
	sched   *scheduler.Scheduler
}

func newSystem(cfg *config.Config, panel badge.Panel) (*system, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	table, err := images.Load()
	if err != nil {
		return nil, err
	}
	// The image region is erased before every image change, it has to cover
	// every image at its anchor.
	for _, r := range registry.All() {
		if r.Kind == region.Image && !table.Footprint().In(r.Rect) {
			return nil, fmt.Errorf("%w: %s does not cover the images at %s",
				region.ErrInvalidRegionBounds, r, table.Footprint())
		}
	}

	renderer, err := render.New(table)
	if err != nil {
		return nil, err
	}

	surface := share.New()
	sched, err := scheduler.New(panel, registry, surface, renderer, scheduler.Config{
		Period:      cfg.Scheduler.Period,
		CycleLength: cfg.Scheduler.CycleLength,
		Speed:       cfg.Speed(),
	})
	if err != nil {
		return nil, err
	}

	return &system{
		surface: surface,
		machine: screen.NewMachine(surface),
		sched:   sched,
	}, nil
}
