package badge

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/badge/pixel"
)

type testCommand struct {
	Command byte
	Args    []byte
}

type testConn struct {
	commands []testCommand
	data     [][]byte
	resets   []gpio.Level
	failOn   byte
	idleErr  error
}

func (c *testConn) String() string { return "test" }
func (c *testConn) Close() error   { return nil }

func (c *testConn) Reset(l gpio.Level) error {
	c.resets = append(c.resets, l)
	return nil
}

func (c *testConn) Command(cmnd byte, args ...byte) error {
	if c.failOn != 0 && cmnd == c.failOn {
		return errors.New("bus fault")
	}
	c.commands = append(c.commands, testCommand{cmnd, append([]byte(nil), args...)})
	return nil
}

func (c *testConn) Data(data ...byte) error {
	c.data = append(c.data, append([]byte(nil), data...))
	return nil
}

func (c *testConn) WaitIdle(time.Duration) error {
	return c.idleErr
}

func (c *testConn) opcodes() []byte {
	out := make([]byte, len(c.commands))
	for i, cmd := range c.commands {
		out[i] = cmd.Command
	}
	return out
}

func (c *testConn) find(cmnd byte) (testCommand, bool) {
	for _, cmd := range c.commands {
		if cmd.Command == cmnd {
			return cmd, true
		}
	}
	return testCommand{}, false
}

func newTestUC8151(t *testing.T, speed SpeedProfile) (*UC8151, *testConn) {
	t.Helper()
	c := new(testConn)
	d, err := NewUC8151(c, nil)
	require.NoError(t, err)
	require.NoError(t, d.Reset())
	require.NoError(t, d.Configure(speed))
	return d, c
}

func TestUC8151Size(t *testing.T) {
	d, err := NewUC8151(new(testConn), nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 296, 128), d.Bounds())

	_, err = NewUC8151(new(testConn), &Config{Width: 296, Height: 130})
	assert.Error(t, err)
}

func TestUC8151Configure(t *testing.T) {
	d, c := newTestUC8151(t, SpeedDefault)
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, c.resets)

	psr, ok := c.find(uc8151PSR)
	require.True(t, ok)
	assert.Zero(t, psr.Args[0]&uc8151LUTReg, "default speed uses the OTP waveforms")
	_, ok = c.find(uc8151LUTVCOM)
	assert.False(t, ok)
	assert.Equal(t, byte(uc8151PON), c.opcodes()[len(c.commands)-1])
	assert.Contains(t, d.String(), "default")

	_, c = newTestUC8151(t, SpeedFast)
	psr, _ = c.find(uc8151PSR)
	assert.NotZero(t, psr.Args[0]&uc8151LUTReg)
	vcom, ok := c.find(uc8151LUTVCOM)
	require.True(t, ok)
	assert.Len(t, vcom.Args, uc8151LUTVCOMSize)
	bb, ok := c.find(uc8151LUTBB)
	require.True(t, ok)
	assert.Len(t, bb.Args, uc8151LUTSize)
	pll, _ := c.find(uc8151PLL)
	assert.Equal(t, []byte{uc8151Hz200}, pll.Args)

	d, _ = newTestUC8151(t, SpeedDefault)
	assert.Error(t, d.Configure(SpeedProfile(9)))
}

func TestUC8151CommitPartial(t *testing.T) {
	d, c := newTestUC8151(t, SpeedFast)
	c.commands = nil

	r := image.Rect(10, 24, 14, 40)
	content := pixel.NewMonoImage(296, 128)
	content.Set(10, 24, pixel.Off)
	require.NoError(t, d.DrawRegion(r, content))
	require.NoError(t, d.CommitPartial(r))

	assert.Equal(t, []byte{
		uc8151PTIN, uc8151PTL, uc8151DTM2, uc8151DSP, uc8151DRF, uc8151POF, uc8151PTOU,
	}, c.opcodes())

	ptl, _ := c.find(uc8151PTL)
	assert.Equal(t, []byte{24, 39, 0, 10, 0, 13, uc8151PartialScan}, ptl.Args)

	require.Len(t, c.data, 1)
	assert.Len(t, c.data[0], 4*2, "four columns of two banks")
	assert.Equal(t, byte(0x7f), c.data[0][0])
}

func TestUC8151CommitPartialAlignment(t *testing.T) {
	d, c := newTestUC8151(t, SpeedFast)
	c.commands = nil

	err := d.CommitPartial(image.Rect(0, 4, 10, 20))
	assert.ErrorIs(t, err, ErrBounds)
	assert.Empty(t, c.commands)

	err = d.CommitPartial(image.Rect(290, 0, 300, 8))
	assert.ErrorIs(t, err, ErrBounds)

	err = d.DrawRegion(image.Rect(-1, 0, 8, 8), image.NewUniform(pixel.On))
	assert.ErrorIs(t, err, ErrBounds)
}

func TestUC8151CommitFull(t *testing.T) {
	d, c := newTestUC8151(t, SpeedDefault)
	c.commands = nil

	require.NoError(t, d.CommitFull())
	assert.Equal(t, []byte{uc8151DTM2, uc8151DSP, uc8151DRF, uc8151POF}, c.opcodes())

	// Powered off after the refresh, the next commit powers up first.
	c.commands = nil
	require.NoError(t, d.CommitFull())
	assert.Equal(t, byte(uc8151PON), c.opcodes()[0])
	require.Len(t, c.data, 1)
	assert.Len(t, c.data[0], 296*128/8)
}

func TestUC8151Errors(t *testing.T) {
	d, c := newTestUC8151(t, SpeedDefault)
	c.idleErr = ErrPanelTimeout
	assert.ErrorIs(t, d.CommitFull(), ErrPanelTimeout)

	c.idleErr = nil
	c.failOn = uc8151DRF
	err := d.CommitPartial(image.Rect(0, 0, 8, 8))
	assert.ErrorIs(t, err, ErrPanelProtocol)
	assert.NotErrorIs(t, err, ErrPanelTimeout)
	assert.Equal(t, byte(uc8151PTOU), c.opcodes()[len(c.commands)-1])
}

func TestUC8151PartialTimeoutLeavesPartialMode(t *testing.T) {
	d, c := newTestUC8151(t, SpeedFast)
	c.commands = nil

	c.idleErr = ErrPanelTimeout
	assert.ErrorIs(t, d.CommitPartial(image.Rect(0, 0, 8, 8)), ErrPanelTimeout)
	assert.Equal(t, []byte{
		uc8151PTIN, uc8151PTL, uc8151DTM2, uc8151DSP, uc8151DRF, uc8151PTOU,
	}, c.opcodes())

	c.idleErr = nil
	c.commands = nil
	require.NoError(t, d.CommitFull())
	assert.NotContains(t, c.opcodes(), byte(uc8151PTIN))
	assert.Equal(t, byte(uc8151DTM2), c.opcodes()[0])
}

func TestUC8151LUTs(t *testing.T) {
	turbo := uc8151LUTs(SpeedTurbo)
	assert.Equal(t, byte(uc8151LevelBlack), turbo.bb[0], "turbo skips the flash group")

	medium := uc8151LUTs(SpeedMedium)
	assert.Equal(t, byte(uc8151LevelFlash), medium.ww[0])
	assert.Equal(t, byte(uc8151LevelWhite), medium.ww[6])
}
