// Package badge contains the e-paper panel capability and its drivers.
//
// A [Panel] owns a frame buffer. Regions are drawn into the buffer with
// [Panel.DrawRegion] and become visible only after a commit: [Panel.CommitPartial]
// refreshes a sub-rectangle quickly, [Panel.CommitFull] refreshes the whole panel
// (slow, flashes, clears ghosting).
package badge

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

// Errors
var (
	ErrBounds        = errors.New("badge: region out of panel bounds")
	ErrPanelTimeout  = errors.New("badge: panel busy timeout")
	ErrPanelProtocol = errors.New("badge: panel protocol error")
)

// SpeedProfile selects the refresh waveform.
type SpeedProfile uint8

// Supported speed profiles, slowest (cleanest) first.
const (
	SpeedDefault SpeedProfile = iota
	SpeedMedium
	SpeedFast
	SpeedTurbo
)

var speedNames = [...]string{"default", "medium", "fast", "turbo"}

func (s SpeedProfile) String() string {
	if int(s) < len(speedNames) {
		return speedNames[s]
	}
	return fmt.Sprintf("speed(%d)", uint8(s))
}

// ParseSpeed parses a speed profile name.
func ParseSpeed(name string) (SpeedProfile, error) {
	for i, n := range speedNames {
		if strings.EqualFold(n, name) {
			return SpeedProfile(i), nil
		}
	}
	return 0, fmt.Errorf("badge: unknown speed profile %q", name)
}

// Panel is an e-paper panel.
//
// Only a single goroutine may use a Panel.
type Panel interface {
	// Reset the panel controller.
	Reset() error

	// Configure the panel for the speed profile and power it up.
	Configure(SpeedProfile) error

	// Bounds is the panel bounding box (dimensions).
	Bounds() image.Rectangle

	// DrawRegion copies content into the frame buffer at r. Content is in panel
	// coordinates, content.At(r.Min) ends up at r.Min.
	DrawRegion(r image.Rectangle, content image.Image) error

	// CommitPartial refreshes r from the frame buffer.
	CommitPartial(r image.Rectangle) error

	// CommitFull refreshes the whole panel from the frame buffer.
	CommitFull() error
}

// Config is the panel configuration.
type Config struct {
	// Width of the panel in pixels.
	Width int

	// Height of the panel in pixels.
	Height int

	// Inverted swaps ink and paper.
	Inverted bool

	// BusyTimeout bounds a single refresh; zero uses the driver default.
	BusyTimeout time.Duration
}

func checkRegion(bounds, r image.Rectangle) error {
	if r.Empty() || !r.In(bounds) {
		return fmt.Errorf("%w: %s not in %s", ErrBounds, r, bounds)
	}
	return nil
}
