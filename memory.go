package badge

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/BeatGlow/badge/draw"
	"github.com/BeatGlow/badge/pixel"
)

// Op names a panel operation.
type Op uint8

// Panel operations.
const (
	OpReset Op = iota
	OpConfigure
	OpDraw
	OpCommitPartial
	OpCommitFull
)

var opNames = [...]string{"reset", "configure", "draw", "partial", "full"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Call is a recorded panel operation.
type Call struct {
	Op   Op
	Rect image.Rectangle
	Err  error
}

// Memory is a [Panel] without hardware. It keeps a frame buffer plus the image that
// would be visible on the glass, which only changes on commits.
//
// Memory records every call and can be told to fail operations, which makes it the
// panel of choice for previews and tests.
type Memory struct {
	mu     sync.Mutex
	buf    *pixel.MonoImage
	screen *pixel.MonoImage
	speed  SpeedProfile
	calls  []Call

	// Fail, when set, is consulted before every operation; a non-nil error aborts it.
	Fail func(op Op, r image.Rectangle) error
}

// NewMemory returns a w x h memory panel.
func NewMemory(w, h int) *Memory {
	return &Memory{
		buf:    pixel.NewMonoImage(w, h),
		screen: pixel.NewMonoImage(w, h),
	}
}

func (m *Memory) String() string {
	b := m.buf.Bounds()
	return fmt.Sprintf("memory panel %dx%d", b.Dx(), b.Dy())
}

func (m *Memory) record(op Op, r image.Rectangle) error {
	var err error
	if m.Fail != nil {
		err = m.Fail(op, r)
	}
	m.calls = append(m.calls, Call{Op: op, Rect: r, Err: err})
	return err
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(OpReset, image.Rectangle{})
}

func (m *Memory) Configure(speed SpeedProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpConfigure, image.Rectangle{}); err != nil {
		return err
	}
	m.speed = speed
	return nil
}

func (m *Memory) Bounds() image.Rectangle {
	return m.buf.Bounds()
}

func (m *Memory) DrawRegion(r image.Rectangle, content image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRegion(m.buf.Bounds(), r); err != nil {
		return err
	}
	if err := m.record(OpDraw, r); err != nil {
		return err
	}
	draw.Draw(m.buf, r, content, r.Min, draw.Src)
	return nil
}

func (m *Memory) CommitPartial(r image.Rectangle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRegion(m.buf.Bounds(), r); err != nil {
		return err
	}
	if err := m.record(OpCommitPartial, r); err != nil {
		return err
	}
	draw.Draw(m.screen, r, m.buf, r.Min, draw.Src)
	return nil
}

func (m *Memory) CommitFull() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.buf.Bounds()
	if err := m.record(OpCommitFull, r); err != nil {
		return err
	}
	copy(m.screen.Pix, m.buf.Pix)
	return nil
}

// Calls returns a copy of the recorded operations.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ResetCalls forgets the recorded operations.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	m.calls = m.calls[:0]
	m.mu.Unlock()
}

// Speed is the last configured speed profile.
func (m *Memory) Speed() SpeedProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// Screen returns a copy of what is visible on the glass.
func (m *Memory) Screen() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := pixel.NewMonoImage(m.screen.Rect.Dx(), m.screen.Rect.Dy())
	copy(out.Pix, m.screen.Pix)
	return out
}

// WritePNG encodes the visible image as PNG.
func (m *Memory) WritePNG(w io.Writer) error {
	return png.Encode(w, m.Screen())
}

// Interface checks.
var _ Panel = (*Memory)(nil)
