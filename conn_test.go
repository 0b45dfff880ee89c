package badge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type testWriter struct {
	writes [][]byte
}

func (w *testWriter) String() string { return "test" }
func (w *testWriter) Close() error   { return nil }

func (w *testWriter) Write(b []byte) (int, error) {
	w.writes = append(w.writes, append([]byte(nil), b...))
	return len(b), nil
}

type testPins struct {
	reset, dc, busy *gpiotest.Pin
}

func newTestSPIConn(t *testing.T, batchSize uint) (*spiConn, *testWriter, testPins) {
	t.Helper()
	pins := testPins{
		reset: &gpiotest.Pin{N: "RST"},
		dc:    &gpiotest.Pin{N: "DC"},
		busy:  &gpiotest.Pin{N: "BUSY", EdgesChan: make(chan gpio.Level, 1)},
	}
	w := new(testWriter)
	c, err := NewSPIConn(w, &SPIConfig{
		BatchSize: batchSize,
		Reset:     pins.reset,
		DC:        pins.dc,
		Busy:      pins.busy,
	})
	require.NoError(t, err)
	return c.(*spiConn), w, pins
}

func TestNewSPIConnPins(t *testing.T) {
	w := new(testWriter)
	_, err := NewSPIConn(w, &SPIConfig{})
	assert.ErrorIs(t, err, ErrResetPin)

	_, err = NewSPIConn(w, &SPIConfig{Reset: &gpiotest.Pin{N: "RST"}})
	assert.ErrorIs(t, err, ErrDCPin)

	_, err = NewSPIConn(w, &SPIConfig{Reset: &gpiotest.Pin{N: "RST"}, DC: &gpiotest.Pin{N: "DC"}})
	assert.ErrorIs(t, err, ErrBusyPin)
}

func TestSPIConnCommand(t *testing.T) {
	c, w, pins := newTestSPIConn(t, 0)

	require.NoError(t, c.Command(0x12, 0x01, 0x02))
	assert.Equal(t, [][]byte{{0x12}, {0x01, 0x02}}, w.writes)
	assert.Equal(t, gpio.High, pins.dc.Read())

	require.NoError(t, c.Command(0x04))
	assert.Equal(t, gpio.Low, pins.dc.Read())

	require.NoError(t, c.Reset(gpio.Low))
	assert.Equal(t, gpio.Low, pins.reset.Read())
}

func TestSPIConnChunked(t *testing.T) {
	c, w, _ := newTestSPIConn(t, 4)

	require.NoError(t, c.Data(make([]byte, 10)...))
	require.Len(t, w.writes, 3)
	assert.Len(t, w.writes[0], 4)
	assert.Len(t, w.writes[1], 4)
	assert.Len(t, w.writes[2], 2)

	require.NoError(t, c.Data())
	assert.Len(t, w.writes, 3)
}

func TestSPIConnWaitIdle(t *testing.T) {
	c, _, pins := newTestSPIConn(t, 0)

	// Pulled up means idle.
	assert.NoError(t, c.WaitIdle(time.Millisecond))

	require.NoError(t, pins.busy.Out(gpio.Low))
	assert.ErrorIs(t, c.WaitIdle(20*time.Millisecond), ErrPanelTimeout)

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = pins.busy.Out(gpio.High)
	}()
	assert.NoError(t, c.WaitIdle(time.Second))
}
