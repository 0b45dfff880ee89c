package badge

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/BeatGlow/badge/conn"
	"github.com/BeatGlow/badge/internal/logging"
)

// Conn errors.
var (
	ErrResetPin = errors.New("badge: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("badge: data/command (DC) GPIO pin is invalid")
	ErrBusyPin  = errors.New("badge: busy GPIO pin is invalid")
)

// Conn is the connection interface for communicating with the panel controller.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error

	// WaitIdle blocks until the controller releases its busy line or the timeout expires.
	WaitIdle(timeout time.Duration) error
}

// Writer is a serial bus.
type Writer interface {
	String() string
	Close() error
	Write([]byte) (int, error)
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	Bus       int
	Device    int
	SpeedHz   uint32
	BatchSize uint
	Reset     gpio.PinOut
	DC        gpio.PinOut
	CS        gpio.PinOut
	Busy      gpio.PinIn
}

// DefaultSPIConfig are the default configuration values, the pinout of a Pimoroni Badger
// style panel on a Raspberry Pi header.
var DefaultSPIConfig = SPIConfig{
	Bus:       0,
	Device:    0,
	SpeedHz:   4_000_000,
	BatchSize: 4096,
	Reset:     gpioreg.ByName("GPIO17"),
	DC:        gpioreg.ByName("GPIO25"),
	Busy:      gpioreg.ByName("GPIO24"),
}

type spiConn struct {
	bus       Writer
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	dcValid   bool
	cs        gpio.PinOut
	busy      gpio.PinIn
	batchSize uint
}

// OpenSPI opens the SPI bus and claims the control pins.
func OpenSPI(config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}
	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultSPIConfig.SpeedHz
	}

	c, err := conn.OpenSPI(config.Bus, config.Device, conn.SPIMode0, int(config.SpeedHz))
	if err != nil {
		return nil, err
	}

	sc, err := NewSPIConn(c, config)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return sc, nil
}

// NewSPIConn wraps an opened bus.
func NewSPIConn(bus Writer, config *SPIConfig) (Conn, error) {
	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	if config.Busy == nil || config.Busy == gpio.INVALID {
		return nil, ErrBusyPin
	}
	if err := config.Busy.In(gpio.PullUp, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("badge: busy pin %s: %w", config.Busy, err)
	}

	batchSize := config.BatchSize
	if batchSize == 0 {
		batchSize = DefaultSPIConfig.BatchSize
	}
	if l, ok := bus.(interface{ MaxTxSize() int }); ok && l.MaxTxSize() > 0 && uint(l.MaxTxSize()) < batchSize {
		batchSize = uint(l.MaxTxSize())
	}

	return &spiConn{
		bus:       bus,
		batchSize: batchSize,
		reset:     config.Reset,
		dc:        config.DC,
		cs:        config.CS,
		busy:      config.Busy,
	}, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if !c.dcValid || c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel, c.dcValid = level, true
	}
	return nil
}

func (c *spiConn) updateCS(level gpio.Level) error {
	if c.cs == nil {
		return nil
	}
	return c.cs.Out(level)
}

func (c *spiConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.updateDC(gpio.Low); err != nil {
		return
	}
	if _, err = c.bus.Write([]byte{cmnd}); err != nil {
		return
	}
	if len(data) > 0 {
		if err = c.updateDC(gpio.High); err != nil {
			return
		}
		if err = c.writeChunked(data); err != nil {
			return
		}
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.High); err != nil {
		return
	}
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.writeChunked(data); err != nil {
		return
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	if len(data) <= int(c.batchSize) {
		_, err = c.bus.Write(data)
		return
	}

	logging.Debug("panel: chunked write",
		zap.Int("bytes", len(data)),
		zap.Int("chunks", (len(data)+int(c.batchSize)-1)/int(c.batchSize)))
	buffer := data
	for len(buffer) > 0 {
		n := min(len(buffer), int(c.batchSize))
		if _, err = c.bus.Write(buffer[:n]); err != nil {
			return
		}
		buffer = buffer[n:]
	}
	return
}

// WaitIdle waits for the busy line to go high; UC8151 controllers pull it low while refreshing.
func (c *spiConn) WaitIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for c.busy.Read() == gpio.Low {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrPanelTimeout
		}
		// The edge may have happened between Read and WaitForEdge, so poll at least every 10ms.
		c.busy.WaitForEdge(min(remaining, 10*time.Millisecond))
	}
	return nil
}
