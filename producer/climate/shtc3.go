package climate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
)

// SHTC3 default bus address.
const SHTC3Addr = 0x70

// SHTC3 commands, sent most significant byte first.
const (
	shtc3Wakeup      = 0x3517
	shtc3Sleep       = 0xb098
	shtc3SoftReset   = 0x805d
	shtc3ReadID      = 0xefc8
	shtc3MeasureTRH  = 0x7866 // normal mode, temperature first, no clock stretching
	shtc3MeasureTime = 13 * time.Millisecond
	shtc3WakeupTime  = 240 * time.Microsecond
)

// ErrCRC is returned for a reading with a bad checksum.
var ErrCRC = errors.New("climate: checksum mismatch")

// SHTC3 is a Sensirion SHTC3 temperature and humidity sensor.
type SHTC3 struct {
	dev conn.Conn

	// Sleep is used for the conversion delays, tests replace it.
	Sleep func(time.Duration)
}

// NewSHTC3 returns a sensor on dev, usually an *i2c.Dev at [SHTC3Addr].
func NewSHTC3(dev conn.Conn) *SHTC3 {
	return &SHTC3{dev: dev, Sleep: time.Sleep}
}

func (s *SHTC3) String() string {
	return fmt.Sprintf("SHTC3 on %s", s.dev)
}

func (s *SHTC3) command(cmd uint16) error {
	var w [2]byte
	binary.BigEndian.PutUint16(w[:], cmd)
	if err := s.dev.Tx(w[:], nil); err != nil {
		return fmt.Errorf("climate: command %#04x: %w", cmd, err)
	}
	return nil
}

// Reset soft-resets the sensor.
func (s *SHTC3) Reset() error {
	if err := s.command(shtc3Wakeup); err != nil {
		return err
	}
	s.Sleep(shtc3WakeupTime)
	return s.command(shtc3SoftReset)
}

// ID reads the product identifier.
func (s *SHTC3) ID() (uint16, error) {
	var (
		w = []byte{shtc3ReadID >> 8, shtc3ReadID & 0xff}
		r = make([]byte, 3)
	)
	if err := s.dev.Tx(w, r); err != nil {
		return 0, fmt.Errorf("climate: read id: %w", err)
	}
	return word(r)
}

// Sense wakes the sensor, takes one measurement and puts it back to sleep.
func (s *SHTC3) Sense() (Sample, error) {
	if err := s.command(shtc3Wakeup); err != nil {
		return Sample{}, err
	}
	s.Sleep(shtc3WakeupTime)

	if err := s.command(shtc3MeasureTRH); err != nil {
		return Sample{}, err
	}
	s.Sleep(shtc3MeasureTime)

	r := make([]byte, 6)
	if err := s.dev.Tx(nil, r); err != nil {
		return Sample{}, fmt.Errorf("climate: read: %w", err)
	}
	rawT, err := word(r[0:3])
	if err != nil {
		return Sample{}, err
	}
	rawRH, err := word(r[3:6])
	if err != nil {
		return Sample{}, err
	}

	if err = s.command(shtc3Sleep); err != nil {
		return Sample{}, err
	}
	return Sample{
		Celsius:  -45 + 175*float64(rawT)/65536,
		Humidity: 100 * float64(rawRH)/65536,
	}, nil
}

// word checks and decodes a two byte word followed by its checksum.
func word(b []byte) (uint16, error) {
	if crc8(b[:2]) != b[2] {
		return 0, fmt.Errorf("%w: %#02x != %#02x", ErrCRC, crc8(b[:2]), b[2])
	}
	return binary.BigEndian.Uint16(b), nil
}

// crc8 is the Sensirion checksum: polynomial 0x31, initial value 0xff.
func crc8(data []byte) byte {
	crc := byte(0xff)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
