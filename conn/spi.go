// Package conn opens the serial buses the badge peripherals are wired to.
package conn

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// SPIMode is an alias for [spi.Mode].
type SPIMode = spi.Mode

// Supported SPI modes.
const (
	SPIMode0 = spi.Mode0
	SPIMode1 = spi.Mode1
	SPIMode2 = spi.Mode2
	SPIMode3 = spi.Mode3
)

// SPI is a connected SPI port.
type SPI struct {
	port      spi.PortCloser
	conn      spi.Conn
	mode      SPIMode
	maxSpeed  physic.Frequency
	maxTxSize int
}

// OpenSPI opens the numbered spi bus with the numbered device. The device often corresponds to the CS pin
// for that bus. A negative bus opens the first available port.
func OpenSPI(bus, device int, mode SPIMode, hz int) (*SPI, error) {
	var name string
	if bus >= 0 {
		name = fmt.Sprintf("SPI%d.%d", bus, device)
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}

	c, err := Connect(port, mode, hz)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return c, nil
}

// Connect configures an already opened port.
func Connect(port spi.PortCloser, mode SPIMode, hz int) (*SPI, error) {
	speed := physic.Frequency(hz) * physic.Hertz
	c, err := port.Connect(speed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("conn: SPI connect at %s failed: %w", speed, err)
	}

	s := &SPI{
		port:     port,
		conn:     c,
		mode:     mode,
		maxSpeed: speed,
	}
	if l, ok := c.(conn.Limits); ok {
		s.maxTxSize = l.MaxTxSize()
	}
	return s, nil
}

func (c *SPI) Close() error {
	return c.port.Close()
}

func (c *SPI) String() string {
	return "SPI " + c.port.String() + " mode=" + strconv.Itoa(int(c.mode)) + " max speed=" + c.maxSpeed.String()
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

// MaxTxSize is the largest single transfer the port accepts, 0 if unlimited.
func (c *SPI) MaxTxSize() int {
	return c.maxTxSize
}

func (c *SPI) Write(b []byte) (n int, err error) {
	if err = c.conn.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}
