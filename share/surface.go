// Package share is the state shared between the badge producers and the refresh scheduler.
//
// A single [Surface] is constructed at boot and handed to every task. Fields are
// written by:
//
//	WifiCount              wifi producer (monotonic)
//	TemperatureF, Humidity climate producer (last sample wins)
//	Clock                  clock producer
//	Networks               wifi producer
//	ActiveScreen           screen machine, driven by the buttons
//	ImageIndex             image rotation, driven by the buttons or the rotation timer
//
// ActiveScreen and ImageIndex have several writers and change only through
// [Surface.Update], so concurrent presses are never lost.
//
// The scheduler only reads fields and takes mailboxes. Scalars are independent atomics
// without cross-field ordering; every redraw works from a fresh [Snapshot].
package share

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Capacities of the text fields, longer values are truncated.
const (
	ClockCapacity   = 16
	NetworkCapacity = 32
	MaxNetworks     = 5
)

// Field names a scalar slot.
type Field uint8

// Scalar fields.
const (
	WifiCount Field = iota
	TemperatureF
	HumidityPct
	ActiveScreen
	ImageIndex
	numFields
)

var fieldNames = [...]string{"wifi-count", "temperature", "humidity", "screen", "image"}

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Surface is the shared-state handle.
type Surface struct {
	scalars [numFields]atomic.Int64

	mu       sync.Mutex
	clock    string
	networks []string

	mailboxes [numEvents]Mailbox
}

// New returns a surface with all mailboxes empty.
func New() *Surface {
	s := new(Surface)
	for i := range s.mailboxes {
		s.mailboxes[i] = makeMailbox()
	}
	return s
}

// Store sets a scalar field. Stores to [WifiCount] below the current value are ignored.
// Never blocks.
func (s *Surface) Store(f Field, v int64) {
	slot := s.slot(f)
	if f != WifiCount {
		slot.Store(v)
		return
	}
	for {
		old := slot.Load()
		if v <= old || slot.CompareAndSwap(old, v) {
			return
		}
	}
}

// Update replaces a scalar field with fn of its value, atomically, and returns the
// previous and the new value. fn may be called more than once under contention.
// [WifiCount] never decreases.
func (s *Surface) Update(f Field, fn func(int64) int64) (prev, next int64) {
	slot := s.slot(f)
	for {
		prev = slot.Load()
		next = fn(prev)
		if f == WifiCount && next < prev {
			next = prev
		}
		if slot.CompareAndSwap(prev, next) {
			return prev, next
		}
	}
}

// Load returns a scalar field.
func (s *Surface) Load(f Field) int64 {
	return s.slot(f).Load()
}

func (s *Surface) slot(f Field) *atomic.Int64 {
	if f >= numFields {
		panic(fmt.Sprintf("share: invalid %s", f))
	}
	return &s.scalars[f]
}

// SetWifiCount publishes the number of networks seen.
func (s *Surface) SetWifiCount(n uint32) {
	s.Store(WifiCount, int64(n))
}

// WifiCount returns the number of networks seen.
func (s *Surface) WifiCount() uint32 {
	return uint32(s.Load(WifiCount))
}

// SetClimate publishes a temperature (°F) and relative humidity (%) sample.
func (s *Surface) SetClimate(temperatureF, humidityPct int) {
	s.Store(TemperatureF, int64(temperatureF))
	s.Store(HumidityPct, int64(humidityPct))
}

// SetImage publishes the image ordinal.
func (s *Surface) SetImage(ordinal int) {
	s.Store(ImageIndex, int64(ordinal))
}

// Image returns the image ordinal.
func (s *Surface) Image() int {
	return int(s.Load(ImageIndex))
}

// SetScreen publishes the active screen ordinal.
func (s *Surface) SetScreen(ordinal int) {
	s.Store(ActiveScreen, int64(ordinal))
}

// Screen returns the active screen ordinal.
func (s *Surface) Screen() int {
	return int(s.Load(ActiveScreen))
}

// SetClock publishes the formatted clock text, truncated to [ClockCapacity] bytes.
func (s *Surface) SetClock(text string) {
	text = truncate(text, ClockCapacity)
	s.mu.Lock()
	s.clock = text
	s.mu.Unlock()
}

// Clock returns the formatted clock text.
func (s *Surface) Clock() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// SetNetworks publishes the most recently seen network names, keeping the first
// [MaxNetworks] entries each truncated to [NetworkCapacity] bytes.
func (s *Surface) SetNetworks(names []string) {
	n := min(len(names), MaxNetworks)
	out := make([]string, n)
	for i := range out {
		out[i] = truncate(names[i], NetworkCapacity)
	}
	s.mu.Lock()
	s.networks = out
	s.mu.Unlock()
}

// Networks returns a copy of the published network names.
func (s *Surface) Networks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.networks...)
}

// Signal sets the mailbox of an event. Never blocks.
func (s *Surface) Signal(e Event) {
	s.mailbox(e).Set()
}

// Take reports whether the event was pending and clears it.
func (s *Surface) Take(e Event) bool {
	return s.mailbox(e).TakeAndClear()
}

// Pending reports whether the event is pending without clearing it.
func (s *Surface) Pending(e Event) bool {
	return s.mailbox(e).Pending()
}

func (s *Surface) mailbox(e Event) *Mailbox {
	if e >= numEvents {
		panic(fmt.Sprintf("share: invalid %s", e))
	}
	return &s.mailboxes[e]
}

// Snapshot is a copy of every field, taken for a single redraw.
type Snapshot struct {
	WifiCount    uint32
	TemperatureF int
	HumidityPct  int
	Screen       int
	Image        int
	Clock        string
	Networks     []string
}

// Snapshot copies the current state. Scalars are read individually, text fields under the lock.
func (s *Surface) Snapshot() Snapshot {
	snap := Snapshot{
		WifiCount:    s.WifiCount(),
		TemperatureF: int(s.Load(TemperatureF)),
		HumidityPct:  int(s.Load(HumidityPct)),
		Screen:       int(s.Load(ActiveScreen)),
		Image:        int(s.Load(ImageIndex)),
	}
	s.mu.Lock()
	snap.Clock = s.clock
	snap.Networks = append([]string(nil), s.networks...)
	s.mu.Unlock()
	return snap
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xc0 == 0x80 {
		n--
	}
	return s[:n]
}
