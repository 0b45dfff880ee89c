// Package climate publishes temperature and humidity samples.
package climate

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/share"
)

// DefaultPeriod between samples.
const DefaultPeriod = 30 * time.Second

// Sample is a single reading.
type Sample struct {
	Celsius  float64
	Humidity float64
}

// Fahrenheit converts the temperature.
func (s Sample) Fahrenheit() float64 {
	return s.Celsius*9/5 + 32
}

// Sensor takes readings.
type Sensor interface {
	Sense() (Sample, error)
}

// Producer publishes sensor samples, the last good sample stays published when a
// reading fails.
type Producer struct {
	surface *share.Surface
	sensor  Sensor
	log     *zap.Logger
}

// New returns a producer for sensor.
func New(surface *share.Surface, sensor Sensor) *Producer {
	return &Producer{
		surface: surface,
		sensor:  sensor,
		log:     logging.Named("climate"),
	}
}

// Publish takes one sample.
func (p *Producer) Publish() error {
	sample, err := p.sensor.Sense()
	if err != nil {
		p.log.Warn("sensor read failed", zap.Error(err))
		return err
	}
	var (
		f  = int(math.Round(sample.Fahrenheit()))
		rh = int(math.Round(sample.Humidity))
	)
	p.surface.SetClimate(f, rh)
	p.log.Debug("sample",
		zap.Int("temperature_f", f),
		zap.Int("humidity_pct", rh))
	return nil
}

// Run samples every period, forever.
func (p *Producer) Run(period time.Duration) {
	for {
		_ = p.Publish()
		time.Sleep(period)
	}
}
