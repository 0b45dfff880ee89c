package badge

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/badge/draw"
	"github.com/BeatGlow/badge/pixel"
)

const (
	uc8151DefaultWidth       = 296
	uc8151DefaultHeight      = 128
	uc8151DefaultBusyTimeout = 5 * time.Second
)

// Registers (from the UC8151C datasheet).
const (
	uc8151PSR     = 0x00 // Panel Setting
	uc8151PWR     = 0x01 // Power Setting
	uc8151POF     = 0x02 // Power OFF
	uc8151PFS     = 0x03 // Power OFF Sequence Setting
	uc8151PON     = 0x04 // Power ON
	uc8151BTST    = 0x06 // Booster Soft Start
	uc8151DSLP    = 0x07 // Deep Sleep
	uc8151DTM1    = 0x10 // Data Start Transmission 1
	uc8151DSP     = 0x11 // Data Stop
	uc8151DRF     = 0x12 // Display Refresh
	uc8151DTM2    = 0x13 // Data Start Transmission 2
	uc8151LUTVCOM = 0x20
	uc8151LUTWW   = 0x21
	uc8151LUTBW   = 0x22
	uc8151LUTWB   = 0x23
	uc8151LUTBB   = 0x24
	uc8151PLL     = 0x30 // PLL Control
	uc8151TSE     = 0x41 // Temperature Sensor Enable
	uc8151CDI     = 0x50 // VCOM and Data Interval Setting
	uc8151TCON    = 0x60 // TCON Setting
	uc8151PTL     = 0x90 // Partial Window
	uc8151PTIN    = 0x91 // Partial In
	uc8151PTOU    = 0x92 // Partial Out
)

// Panel Setting (PSR) bit fields.
const (
	uc8151Res128x296  = 0b1000_0000
	uc8151LUTReg      = 0b0010_0000
	uc8151FormatBW    = 0b0001_0000
	uc8151ScanUp      = 0b0000_1000
	uc8151ShiftRight  = 0b0000_0100
	uc8151BoosterOn   = 0b0000_0010
	uc8151ResetNone   = 0b0000_0001
	uc8151PartialScan = 0b0000_0001 // PTL: gates scan inside and outside the window
)

// PLL frame rates.
const (
	uc8151Hz50  = 0b0011_1100
	uc8151Hz100 = 0b0011_1010
	uc8151Hz200 = 0b0011_1001
)

// UC8151 drives a UC8151 (IL0373) e-paper controller, as found on Pimoroni Badger and
// Pico e-paper badges.
type UC8151 struct {
	c           Conn
	buf         *pixel.MonoColumnImage
	width       int
	height      int
	inverted    bool
	speed       SpeedProfile
	busyTimeout time.Duration
	powered     bool
}

// NewUC8151 returns a driver for the controller on c. The panel is not touched until
// [UC8151.Reset] and [UC8151.Configure] are called.
func NewUC8151(c Conn, config *Config) (*UC8151, error) {
	if config == nil {
		config = new(Config)
	}
	if config.Width == 0 {
		config.Width = uc8151DefaultWidth
	}
	if config.Height == 0 {
		config.Height = uc8151DefaultHeight
	}
	if config.Height%8 != 0 || config.Height > 160 || config.Width > 296 {
		return nil, fmt.Errorf("uc8151: unsupported size %dx%d", config.Width, config.Height)
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = uc8151DefaultBusyTimeout
	}

	return &UC8151{
		c:           c,
		buf:         pixel.NewMonoColumnImage(config.Width, config.Height),
		width:       config.Width,
		height:      config.Height,
		inverted:    config.Inverted,
		busyTimeout: config.BusyTimeout,
	}, nil
}

func (d *UC8151) String() string {
	return fmt.Sprintf("UC8151 e-paper %dx%d (%s)", d.width, d.height, d.speed)
}

// Close puts the controller into deep sleep and closes the connection.
func (d *UC8151) Close() error {
	if err := d.command(uc8151DSLP, 0xa5); err != nil {
		_ = d.c.Close()
		return err
	}
	return d.c.Close()
}

func (d *UC8151) Bounds() image.Rectangle {
	return d.buf.Bounds()
}

// command sends a command and classifies bus failures.
func (d *UC8151) command(command byte, data ...byte) error {
	if err := d.c.Command(command, data...); err != nil {
		return fmt.Errorf("%w: command %#02x: %v", ErrPanelProtocol, command, err)
	}
	return nil
}

func (d *UC8151) commands(commands ...[]byte) (err error) {
	for _, command := range commands {
		if err = d.command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

func (d *UC8151) data(data ...byte) error {
	if err := d.c.Data(data...); err != nil {
		return fmt.Errorf("%w: data: %v", ErrPanelProtocol, err)
	}
	return nil
}

func (d *UC8151) waitIdle() error {
	if err := d.c.WaitIdle(d.busyTimeout); err != nil {
		return fmt.Errorf("uc8151: refresh not finished after %s: %w", d.busyTimeout, err)
	}
	return nil
}

// Reset pulses the reset line and waits for the controller to come up.
func (d *UC8151) Reset() (err error) {
	if err = d.c.Reset(gpio.Low); err != nil {
		return fmt.Errorf("%w: reset: %v", ErrPanelProtocol, err)
	}
	time.Sleep(10 * time.Millisecond)
	if err = d.c.Reset(gpio.High); err != nil {
		return fmt.Errorf("%w: reset: %v", ErrPanelProtocol, err)
	}
	time.Sleep(10 * time.Millisecond)
	d.powered = false
	return d.waitIdle()
}

// Configure programs the panel settings and waveforms for speed, then powers on.
func (d *UC8151) Configure(speed SpeedProfile) (err error) {
	if speed > SpeedTurbo {
		return fmt.Errorf("uc8151: unsupported speed profile %s", speed)
	}

	psr := byte(uc8151Res128x296 | uc8151FormatBW | uc8151ScanUp | uc8151ShiftRight | uc8151BoosterOn | uc8151ResetNone)
	if speed != SpeedDefault {
		psr |= uc8151LUTReg
	}
	cdi := byte(0b01_00_1100)
	if d.inverted {
		cdi = 0b01_01_1100
	}

	if err = d.commands(
		[]byte{uc8151PSR, psr},
		[]byte{uc8151PWR, 0b0000_0011, 0b0000_0000, 0b0010_1011, 0b0010_1011, 0b0010_1011},
		[]byte{uc8151BTST, 0b0001_0111, 0b0001_0111, 0b0001_0111},
		[]byte{uc8151PFS, 0b0000_0000},
		[]byte{uc8151TSE, 0b0000_0000},
		[]byte{uc8151TCON, 0x22},
		[]byte{uc8151CDI, cdi},
		[]byte{uc8151PLL, uc8151PLLFor(speed)},
	); err != nil {
		return
	}

	if speed != SpeedDefault {
		luts := uc8151LUTs(speed)
		if err = d.commands(
			append([]byte{uc8151LUTVCOM}, luts.vcom...),
			append([]byte{uc8151LUTWW}, luts.ww...),
			append([]byte{uc8151LUTBW}, luts.bw...),
			append([]byte{uc8151LUTWB}, luts.wb...),
			append([]byte{uc8151LUTBB}, luts.bb...),
		); err != nil {
			return
		}
	}

	d.speed = speed
	return d.powerOn()
}

func (d *UC8151) powerOn() error {
	if d.powered {
		return nil
	}
	if err := d.command(uc8151PON); err != nil {
		return err
	}
	if err := d.waitIdle(); err != nil {
		return err
	}
	d.powered = true
	return nil
}

func (d *UC8151) powerOff() error {
	d.powered = false
	return d.command(uc8151POF)
}

// DrawRegion copies r of content into the frame buffer. Nothing is sent to the panel.
func (d *UC8151) DrawRegion(r image.Rectangle, content image.Image) error {
	if err := checkRegion(d.Bounds(), r); err != nil {
		return err
	}
	draw.Draw(d.buf, r, content, r.Min, draw.Src)
	return nil
}

// CommitPartial refreshes r, whose vertical edges must be aligned to 8 pixel banks.
func (d *UC8151) CommitPartial(r image.Rectangle) (err error) {
	if err = checkRegion(d.Bounds(), r); err != nil {
		return
	}
	if r.Min.Y%8 != 0 || r.Max.Y%8 != 0 {
		return fmt.Errorf("%w: %s is not aligned to 8 pixel banks", ErrBounds, r)
	}

	var (
		x0 = r.Min.X
		x1 = r.Max.X - 1
	)
	if err = d.powerOn(); err != nil {
		return
	}
	if err = d.command(uc8151PTIN); err != nil {
		return
	}
	// Partial mode ends on every path once PTIN was sent.
	defer func() {
		if ptouErr := d.command(uc8151PTOU); err == nil {
			err = ptouErr
		}
	}()
	if err = d.commands(
		[]byte{uc8151PTL,
			byte(r.Min.Y), byte(r.Max.Y - 1),
			byte(x0 >> 8), byte(x0),
			byte(x1 >> 8), byte(x1),
			uc8151PartialScan,
		},
		[]byte{uc8151DTM2},
	); err != nil {
		return
	}
	if err = d.data(d.buf.Window(r)...); err != nil {
		return
	}
	return d.refresh()
}

// CommitFull uploads the whole frame buffer and refreshes the panel.
func (d *UC8151) CommitFull() (err error) {
	if err = d.powerOn(); err != nil {
		return
	}
	if err = d.command(uc8151DTM2); err != nil {
		return
	}
	if err = d.data(d.buf.Pix...); err != nil {
		return
	}
	return d.refresh()
}

func (d *UC8151) refresh() (err error) {
	if err = d.commands([]byte{uc8151DSP}, []byte{uc8151DRF}); err != nil {
		return
	}
	if err = d.waitIdle(); err != nil {
		return
	}
	return d.powerOff()
}

func uc8151PLLFor(speed SpeedProfile) byte {
	switch speed {
	case SpeedMedium:
		return uc8151Hz100
	case SpeedFast, SpeedTurbo:
		return uc8151Hz200
	default:
		return uc8151Hz50
	}
}

// Interface checks.
var _ Panel = (*UC8151)(nil)
