// Package screen selects the active logical screen.
package screen

import (
	"fmt"
	"strings"

	"github.com/BeatGlow/badge/share"
)

// Screen is a logical screen.
type Screen uint8

// Screens, in cycle order.
const (
	Badge Screen = iota
	WifiList
	count
)

var names = [...]string{"badge", "wifi-list"}

// Count is the number of screens.
const Count = int(count)

func (s Screen) String() string {
	if s < count {
		return names[s]
	}
	return fmt.Sprintf("screen(%d)", uint8(s))
}

// Next is the following screen, wrapping around.
func (s Screen) Next() Screen {
	return FromOrdinal((int(s.mustValid()) + 1) % Count)
}

// Previous is the preceding screen, wrapping around.
func (s Screen) Previous() Screen {
	return FromOrdinal((int(s.mustValid()) + Count - 1) % Count)
}

func (s Screen) mustValid() Screen {
	if s >= count {
		panic(fmt.Sprintf("screen: invalid %s", s))
	}
	return s
}

// FromOrdinal returns the screen with the given ordinal, panicking when out of range.
func FromOrdinal(n int) Screen {
	if n < 0 || n >= Count {
		panic(fmt.Sprintf("screen: ordinal %d out of range", n))
	}
	return Screen(n)
}

// Parse parses a screen name.
func Parse(name string) (Screen, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Screen(i), nil
		}
	}
	return 0, fmt.Errorf("screen: unknown screen %q", name)
}

// Machine publishes the active screen on a shared surface.
type Machine struct {
	surface *share.Surface
}

// NewMachine returns a machine over surface. The active screen is whatever the
// surface holds, [Badge] for a new surface.
func NewMachine(surface *share.Surface) *Machine {
	return &Machine{surface: surface}
}

// Current is the active screen.
func (m *Machine) Current() Screen {
	return FromOrdinal(m.surface.Screen())
}

// Select makes s active and signals [share.ScreenChanged]. Selecting the active
// screen does nothing and returns false.
func (m *Machine) Select(s Screen) bool {
	s.mustValid()
	_, changed := m.update(func(Screen) Screen { return s })
	return changed
}

// Next selects the following screen.
func (m *Machine) Next() Screen {
	s, _ := m.update(Screen.Next)
	return s
}

// Previous selects the preceding screen.
func (m *Machine) Previous() Screen {
	s, _ := m.update(Screen.Previous)
	return s
}

// update moves the active screen through fn in one atomic step and signals a change.
func (m *Machine) update(fn func(Screen) Screen) (Screen, bool) {
	prev, next := m.surface.Update(share.ActiveScreen, func(v int64) int64 {
		return int64(fn(FromOrdinal(int(v))))
	})
	if prev == next {
		return Screen(next), false
	}
	m.surface.Signal(share.ScreenChanged)
	return Screen(next), true
}
