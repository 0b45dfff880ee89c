// Package clock publishes the formatted wall clock.
package clock

import (
	"time"

	"go.uber.org/zap"

	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/share"
)

// DefaultLayout shows hours and minutes.
const DefaultLayout = "15:04"

// Producer formats the time and signals [share.ClockChanged] when the text changes.
type Producer struct {
	surface *share.Surface
	now     func() time.Time
	layout  string
	last    string
	log     *zap.Logger
}

// New returns a clock producer; a nil now uses [time.Now].
func New(surface *share.Surface, now func() time.Time, layout string) *Producer {
	if now == nil {
		now = time.Now
	}
	if layout == "" {
		layout = DefaultLayout
	}
	return &Producer{
		surface: surface,
		now:     now,
		layout:  layout,
		log:     logging.Named("clock"),
	}
}

// Publish formats the current time and reports whether the text changed.
func (p *Producer) Publish() bool {
	text := p.now().Format(p.layout)
	if text == p.last {
		return false
	}
	p.last = text
	p.surface.SetClock(text)
	p.surface.Signal(share.ClockChanged)
	p.log.Debug("clock changed", zap.String("text", p.surface.Clock()))
	return true
}

// Run publishes every period, forever.
func (p *Producer) Run(period time.Duration) {
	for {
		p.Publish()
		time.Sleep(period)
	}
}
