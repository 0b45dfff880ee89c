// Package scheduler is the refresh loop: the only goroutine that touches the panel.
//
// Every tick the scheduler decides between a full refresh, a partial refresh of the
// due regions, or nothing:
//
//   - a pending screen change redraws the new screen with a full refresh;
//   - a tick wrapping to zero (after the first cycle) does the same, clearing ghosting;
//   - otherwise the regions due at the tick are rendered and committed one by one.
//
// Panel failures are logged and skipped. A region whose commit failed becomes due
// again at its next cadence boundary or signaled event, never earlier.
package scheduler

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BeatGlow/badge"
	"github.com/BeatGlow/badge/draw"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/pixel"
	"github.com/BeatGlow/badge/region"
	"github.com/BeatGlow/badge/screen"
	"github.com/BeatGlow/badge/share"
)

// State of the refresh loop.
type State uint32

// States.
const (
	Idle State = iota
	FullRefreshing
	PartialRefreshing
)

var stateNames = [...]string{"idle", "full", "partial"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint32(s))
}

// Renderer paints a region into a panel sized canvas.
type Renderer interface {
	Render(dst draw.Image, r region.Region, snap share.Snapshot) error
}

// Config of the refresh loop.
type Config struct {
	// Period is the sleep between ticks.
	Period time.Duration

	// CycleLength is the number of ticks before the counter wraps to zero.
	CycleLength int

	// Speed is the panel waveform used for every refresh.
	Speed badge.SpeedProfile
}

// Defaults.
const (
	DefaultPeriod      = 500 * time.Millisecond
	DefaultCycleLength = 240
)

// Stats counts commits since boot.
type Stats struct {
	Ticks          uint64
	FullRefreshes  uint64
	PartialCommits uint64
	Failures       uint64
}

// Scheduler runs the refresh loop.
type Scheduler struct {
	panel    badge.Panel
	registry *region.Registry
	surface  *share.Surface
	renderer Renderer
	config   Config
	canvas   *pixel.MonoImage
	log      *zap.Logger

	tick     int
	firstRun bool
	state    atomic.Uint32

	ticks, full, partial, failures atomic.Uint64
}

// New returns a scheduler for panel. The registry must have been validated against
// the panel bounds.
func New(panel badge.Panel, registry *region.Registry, surface *share.Surface, renderer Renderer, config Config) (*Scheduler, error) {
	if config.Period <= 0 {
		config.Period = DefaultPeriod
	}
	if config.CycleLength == 0 {
		config.CycleLength = DefaultCycleLength
	}
	if config.CycleLength < 0 {
		return nil, fmt.Errorf("scheduler: invalid cycle length %d", config.CycleLength)
	}
	bounds := panel.Bounds()
	if registry.Bounds() != bounds {
		return nil, fmt.Errorf("%w: registry %s does not match panel %s",
			region.ErrInvalidRegionBounds, registry.Bounds(), bounds)
	}
	canvas := pixel.NewMonoImage(bounds.Dx(), bounds.Dy())
	if !bounds.Min.Eq(canvas.Rect.Min) {
		return nil, fmt.Errorf("scheduler: panel origin %s is not supported", bounds.Min)
	}

	return &Scheduler{
		panel:    panel,
		registry: registry,
		surface:  surface,
		renderer: renderer,
		config:   config,
		canvas:   canvas,
		log:      logging.Named("scheduler"),
		firstRun: true,
	}, nil
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(state State) {
	s.state.Store(uint32(state))
}

// Tick is the tick the next [Scheduler.Step] handles.
func (s *Scheduler) Tick() int {
	return s.tick
}

// Stats returns the commit counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:          s.ticks.Load(),
		FullRefreshes:  s.full.Load(),
		PartialCommits: s.partial.Load(),
		Failures:       s.failures.Load(),
	}
}

// Boot resets and configures the panel, then draws the active screen with a full
// refresh, consuming any pending screen change. Any error is fatal.
func (s *Scheduler) Boot() error {
	if err := s.panel.Reset(); err != nil {
		return fmt.Errorf("scheduler: panel reset: %w", err)
	}
	if err := s.panel.Configure(s.config.Speed); err != nil {
		return fmt.Errorf("scheduler: panel configure: %w", err)
	}
	s.log.Info("panel ready",
		zap.Stringer("speed", s.config.Speed),
		zap.Stringer("bounds", s.panel.Bounds()))
	s.surface.Take(share.ScreenChanged)
	return s.fullRefresh(s.activeScreen())
}

// Run steps forever, sleeping a fixed period between ticks. A slow tick delays the
// next one, missed ticks are not caught up.
func (s *Scheduler) Run() {
	s.log.Info("refresh loop started",
		zap.Duration("period", s.config.Period),
		zap.Int("cycle", s.config.CycleLength))
	for {
		s.Step()
		time.Sleep(s.config.Period)
	}
}

// Step handles a single tick.
func (s *Scheduler) Step() {
	tick := s.tick
	// The screen is stored before the signal, load it after taking the mailbox.
	changed := s.surface.Take(share.ScreenChanged)
	active := s.activeScreen()

	switch {
	case changed:
		s.log.Debug("screen changed", zap.Stringer("screen", active), zap.Int("tick", tick))
		_ = s.fullRefresh(active)
	case tick == 0 && !s.firstRun:
		s.log.Debug("cycle wrapped", zap.Stringer("screen", active))
		_ = s.fullRefresh(active)
	default:
		s.partialRefresh(tick, active)
	}

	s.firstRun = false
	s.tick = (tick + 1) % s.config.CycleLength
	s.ticks.Add(1)
}

func (s *Scheduler) activeScreen() screen.Screen {
	return screen.FromOrdinal(s.surface.Screen())
}

// fullRefresh redraws every region of the screen and commits the whole panel. The
// redraw reflects every pending event, so the other mailboxes are drained first.
func (s *Scheduler) fullRefresh(active screen.Screen) error {
	s.setState(FullRefreshing)
	defer s.setState(Idle)

	s.surface.Take(share.ChangeImage)
	s.surface.Take(share.ForceRefresh)
	s.surface.Take(share.ClockChanged)

	snap := s.surface.Snapshot()
	s.canvas.Clear()
	for _, r := range s.registry.ForScreen(active) {
		if err := s.renderer.Render(s.canvas, r, snap); err != nil {
			s.log.Error("render failed", zap.String("region", r.Name), zap.Error(err))
		}
	}

	err := s.panel.DrawRegion(s.panel.Bounds(), s.canvas)
	if err == nil {
		err = s.panel.CommitFull()
	}
	if err != nil {
		s.failures.Add(1)
		s.log.Error("full refresh failed",
			zap.Stringer("screen", active),
			zap.String("class", classify(err)),
			zap.Error(err))
		return err
	}
	s.full.Add(1)
	return nil
}

func (s *Scheduler) partialRefresh(tick int, active screen.Screen) {
	pending := region.Pending{
		ChangeImage:  s.surface.Take(share.ChangeImage),
		ClockChanged: s.surface.Take(share.ClockChanged),
		ForceRefresh: s.surface.Take(share.ForceRefresh) || s.firstRun,
	}
	due := s.registry.DueAt(tick, active, pending)
	if len(due) == 0 {
		return
	}

	s.setState(PartialRefreshing)
	defer s.setState(Idle)

	snap := s.surface.Snapshot()
	for _, r := range due {
		if err := s.commitRegion(r, snap); err != nil {
			s.failures.Add(1)
			s.log.Warn("region refresh failed",
				zap.String("region", r.Name),
				zap.Int("tick", tick),
				zap.String("class", classify(err)),
				zap.Error(err))
			continue
		}
		s.partial.Add(1)
	}
}

func (s *Scheduler) commitRegion(r region.Region, snap share.Snapshot) error {
	if err := s.renderer.Render(s.canvas, r, snap); err != nil {
		return err
	}
	if err := s.panel.DrawRegion(r.Rect, s.canvas); err != nil {
		return err
	}
	return s.panel.CommitPartial(r.Rect)
}

func classify(err error) string {
	switch {
	case errors.Is(err, badge.ErrPanelTimeout):
		return "timeout"
	case errors.Is(err, badge.ErrPanelProtocol):
		return "protocol"
	case errors.Is(err, badge.ErrBounds):
		return "bounds"
	default:
		return "other"
	}
}
