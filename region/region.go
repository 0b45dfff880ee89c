// Package region is the immutable catalog of named screen regions.
package region

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/BeatGlow/badge/screen"
)

// ErrInvalidRegionBounds is returned for a catalog that must not be run:
// overlapping, unaligned or out-of-bounds regions.
var ErrInvalidRegionBounds = errors.New("region: invalid region bounds")

// Kind selects what a region shows.
type Kind uint8

// Region kinds.
const (
	TopBar Kind = iota
	Clock
	Image
	Name
	NetworkHeader
	NetworkList
	numKinds
)

var kindNames = [...]string{"top-bar", "clock", "image", "name", "network-header", "network-list"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("region: unknown kind %q", name)
}

// Trigger is the mailbox that marks a region due outside its cadence.
type Trigger uint8

// Triggers.
const (
	NoTrigger Trigger = iota
	OnImageChange
	OnClockChange
	numTriggers
)

var triggerNames = [...]string{"none", "image", "clock"}

func (t Trigger) String() string {
	if t < numTriggers {
		return triggerNames[t]
	}
	return fmt.Sprintf("trigger(%d)", uint8(t))
}

// ParseTrigger parses a trigger name, the empty string is [NoTrigger].
func ParseTrigger(name string) (Trigger, error) {
	if name == "" {
		return NoTrigger, nil
	}
	for i, n := range triggerNames {
		if strings.EqualFold(n, name) {
			return Trigger(i), nil
		}
	}
	return 0, fmt.Errorf("region: unknown trigger %q", name)
}

// Style controls how a region is painted.
type Style struct {
	// Face is one of "small", "regular" or "bold".
	Face string

	// Border draws a one pixel frame around the region.
	Border bool

	// Invert paints paper on ink.
	Invert bool

	// Lines is the static text of [Name] and [NetworkHeader] regions.
	Lines []string
}

// Region is a named rectangle of a screen with its own redraw cadence.
type Region struct {
	Name   string
	Screen screen.Screen
	Kind   Kind
	Rect   image.Rectangle

	// Cadence is the redraw period in ticks, zero redraws on events only.
	Cadence int

	Trigger Trigger
	Style   Style
}

func (r Region) String() string {
	return fmt.Sprintf("%s %s %s", r.Screen, r.Name, r.Rect)
}

// Pending is a snapshot of the mailboxes taken for a single tick.
type Pending struct {
	ChangeImage  bool
	ClockChanged bool

	// ForceRefresh marks every region due.
	ForceRefresh bool
}

// DueAt reports whether the region must be redrawn at tick.
func (r Region) DueAt(tick int, pending Pending) bool {
	switch {
	case pending.ForceRefresh:
		return true
	case r.Cadence > 0 && tick%r.Cadence == 0:
		return true
	case r.Trigger == OnImageChange:
		return pending.ChangeImage
	case r.Trigger == OnClockChange:
		return pending.ClockChanged
	default:
		return false
	}
}
