package share

import "fmt"

// Event names a mailbox.
type Event uint8

// Mailboxes.
const (
	ChangeImage Event = iota
	ForceRefresh
	ScreenChanged
	ClockChanged
	numEvents
)

var eventNames = [...]string{"change-image", "force-refresh", "screen-changed", "clock-changed"}

func (e Event) String() string {
	if e < numEvents {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// Events lists every mailbox.
func Events() []Event {
	return []Event{ChangeImage, ForceRefresh, ScreenChanged, ClockChanged}
}

// Mailbox is a single-slot signal: Set collapses, TakeAndClear consumes.
//
// Any number of Set calls before a TakeAndClear are observed exactly once; a set
// mailbox stays set until taken.
type Mailbox struct {
	c chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	m := makeMailbox()
	return &m
}

func makeMailbox() Mailbox {
	return Mailbox{c: make(chan struct{}, 1)}
}

// Set marks the mailbox pending. Never blocks.
func (m *Mailbox) Set() {
	select {
	case m.c <- struct{}{}:
	default:
	}
}

// TakeAndClear reports whether the mailbox was pending and empties it.
func (m *Mailbox) TakeAndClear() bool {
	select {
	case <-m.c:
		return true
	default:
		return false
	}
}

// Pending reports whether the mailbox is set.
func (m *Mailbox) Pending() bool {
	return len(m.c) > 0
}
