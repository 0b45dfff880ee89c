package button

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/screen"
	"github.com/BeatGlow/badge/share"
)

func newProducer() (*Producer, *share.Surface, *time.Time) {
	s := share.New()
	p := New(s, screen.NewMachine(s), 0)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	return p, s, &now
}

func TestApply(t *testing.T) {
	p, s, _ := newProducer()

	p.Apply(NextScreen)
	assert.Equal(t, int(screen.WifiList), s.Screen())
	assert.True(t, s.Take(share.ScreenChanged))

	p.Apply(PreviousScreen)
	assert.Equal(t, int(screen.Badge), s.Screen())

	p.Apply(NextImage)
	assert.Equal(t, int(images.Repo), s.Image())
	p.Apply(PreviousImage)
	assert.Equal(t, int(images.Ferris), s.Image())
	assert.True(t, s.Take(share.ChangeImage))

	p.Apply(ForceRefresh)
	assert.True(t, s.Take(share.ForceRefresh))

	assert.Panics(t, func() { p.Apply(Action(42)) })
}

func TestSetup(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO12", EdgesChan: make(chan gpio.Level, 1)}
	require.NoError(t, Setup(Button{Name: "a", Pin: pin}))
	assert.Equal(t, gpio.PullUp, pin.Pull())

	assert.Error(t, Setup(Button{Name: "b"}))
	assert.Error(t, Setup(Button{Name: "c", Pin: &gpiotest.Pin{N: "GPIO13"}}), "edge detection needs an edge channel")
}

func TestPollDebounce(t *testing.T) {
	p, s, now := newProducer()
	pin := &gpiotest.Pin{N: "GPIO14", EdgesChan: make(chan gpio.Level, 1)}
	require.NoError(t, Setup(Button{Name: "c", Pin: pin}))
	b := Button{Name: "c", Pin: pin, Action: NextImage}

	var last time.Time
	assert.False(t, p.poll(b, time.Millisecond, &last), "no edge")

	pin.EdgesChan <- gpio.Low
	assert.True(t, p.poll(b, time.Second, &last))
	assert.Equal(t, int(images.Repo), s.Image())

	// Bounce.
	*now = now.Add(10 * time.Millisecond)
	pin.EdgesChan <- gpio.Low
	assert.False(t, p.poll(b, time.Second, &last))
	assert.Equal(t, int(images.Repo), s.Image())

	// Release edge.
	*now = now.Add(time.Second)
	pin.EdgesChan <- gpio.High
	assert.False(t, p.poll(b, time.Second, &last))

	pin.EdgesChan <- gpio.Low
	assert.True(t, p.poll(b, time.Second, &last))
	assert.Equal(t, int(images.Ferris), s.Image())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("force-refresh")
	require.NoError(t, err)
	assert.Equal(t, ForceRefresh, a)
	_, err = ParseAction("jump")
	assert.Error(t, err)
}
