// Package button turns badge button presses into screen and image changes.
package button

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/screen"
	"github.com/BeatGlow/badge/share"
)

// DefaultDebounce ignores contact bounce after a press.
const DefaultDebounce = 50 * time.Millisecond

// Action is what a button does.
type Action uint8

// Actions.
const (
	NextScreen Action = iota
	PreviousScreen
	NextImage
	PreviousImage
	ForceRefresh
	numActions
)

var actionNames = [...]string{"next-screen", "previous-screen", "next-image", "previous-image", "force-refresh"}

func (a Action) String() string {
	if a < numActions {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction parses an action name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if strings.EqualFold(n, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("button: unknown action %q", name)
}

// Button is an active low push button.
type Button struct {
	Name   string
	Pin    gpio.PinIn
	Action Action
}

// Producer applies button actions to the shared surface.
type Producer struct {
	surface  *share.Surface
	machine  *screen.Machine
	debounce time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// New returns a producer; a negative debounce disables debouncing.
func New(surface *share.Surface, machine *screen.Machine, debounce time.Duration) *Producer {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Producer{
		surface:  surface,
		machine:  machine,
		debounce: debounce,
		now:      time.Now,
		log:      logging.Named("button"),
	}
}

// Apply performs an action.
func (p *Producer) Apply(a Action) {
	switch a {
	case NextScreen:
		p.machine.Next()
	case PreviousScreen:
		p.machine.Previous()
	case NextImage:
		images.Rotate(p.surface, images.Forward)
	case PreviousImage:
		images.Rotate(p.surface, images.Backward)
	case ForceRefresh:
		p.surface.Signal(share.ForceRefresh)
	default:
		panic(fmt.Sprintf("button: invalid %s", a))
	}
}

// Setup configures the button pins for falling edge detection.
func Setup(buttons ...Button) error {
	for _, b := range buttons {
		if b.Pin == nil || b.Pin == gpio.INVALID {
			return fmt.Errorf("button: %s: invalid pin", b.Name)
		}
		if err := b.Pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return fmt.Errorf("button: %s: %w", b.Name, err)
		}
	}
	return nil
}

// Run watches every button in its own goroutine, forever. The pins must have been
// configured with [Setup].
func (p *Producer) Run(buttons ...Button) {
	for _, b := range buttons {
		p.log.Info("watching button",
			zap.String("button", b.Name),
			zap.Stringer("pin", b.Pin),
			zap.Stringer("action", b.Action))
		go func(b Button) {
			var last time.Time
			for {
				p.poll(b, -1, &last)
			}
		}(b)
	}
}

// poll waits up to timeout for a press and applies it. last is the time of the
// previous accepted press of b. It reports whether an action was applied.
func (p *Producer) poll(b Button, timeout time.Duration, last *time.Time) bool {
	if !b.Pin.WaitForEdge(timeout) {
		return false
	}
	if b.Pin.Read() != gpio.Low {
		return false
	}

	now := p.now()
	if !last.IsZero() && p.debounce > 0 && now.Sub(*last) < p.debounce {
		return false
	}
	*last = now

	p.log.Debug("pressed", zap.String("button", b.Name), zap.Stringer("action", b.Action))
	p.Apply(b.Action)
	return true
}
