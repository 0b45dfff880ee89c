// Package config loads the badge configuration.
//
// The defaults are compiled in (default.yaml); a user file is decoded on top of
// them, so it only needs to name the settings it changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BeatGlow/badge"
	"github.com/BeatGlow/badge/region"
	"github.com/BeatGlow/badge/screen"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the badge configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "warn" or "error"; empty defers to BADGE_LOG_LEVEL.
	LogLevel string `yaml:"log_level"`

	Panel     Panel     `yaml:"panel"`
	Scheduler Scheduler `yaml:"scheduler"`
	Clock     Clock     `yaml:"clock"`
	Climate   Climate   `yaml:"climate"`
	Wifi      Wifi      `yaml:"wifi"`
	Store     Store     `yaml:"store"`
	Buttons   Buttons   `yaml:"buttons"`
	Rotate    Rotate    `yaml:"rotate"`
	Regions   []Region  `yaml:"regions"`
}

// Panel is the display hardware.
type Panel struct {
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Speed       string        `yaml:"speed"`
	Inverted    bool          `yaml:"inverted"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	SPI         SPI           `yaml:"spi"`
	Pins        PanelPins     `yaml:"pins"`
}

// SPI selects the bus the panel controller is on.
type SPI struct {
	Bus     int    `yaml:"bus"`
	Device  int    `yaml:"device"`
	SpeedHz uint32 `yaml:"speed_hz"`
}

// PanelPins are GPIO names as known to periph's gpioreg.
type PanelPins struct {
	Reset string `yaml:"reset"`
	DC    string `yaml:"dc"`
	Busy  string `yaml:"busy"`

	// CS is optional, the SPI driver toggles the hardware chip select.
	CS string `yaml:"cs"`
}

// Scheduler is the refresh loop timing.
type Scheduler struct {
	Period      time.Duration `yaml:"period"`
	CycleLength int           `yaml:"cycle_length"`
}

// Clock is the clock producer.
type Clock struct {
	Period time.Duration `yaml:"period"`

	// Layout is a time.Format layout, the result is cut to 16 bytes.
	Layout string `yaml:"layout"`
}

// Climate is the temperature and humidity producer.
type Climate struct {
	Enabled bool `yaml:"enabled"`

	// Bus is the I²C bus number, -1 selects the first available bus.
	Bus     int           `yaml:"bus"`
	Address uint16        `yaml:"address"`
	Period  time.Duration `yaml:"period"`
}

// Wifi is the network scan producer.
type Wifi struct {
	Enabled   bool          `yaml:"enabled"`
	Interface string        `yaml:"interface"`
	Period    time.Duration `yaml:"period"`
}

// Store is the counter persistence.
type Store struct {
	Path       string `yaml:"path"`
	SectorSize int    `yaml:"sector_size"`
}

// Buttons are the input GPIO names; an empty name leaves the button unused.
type Buttons struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
	A        string        `yaml:"a"`
	B        string        `yaml:"b"`
	C        string        `yaml:"c"`
	Up       string        `yaml:"up"`
	Down     string        `yaml:"down"`
}

// Rotate is the periodic image rotation, a zero interval disables it.
type Rotate struct {
	Interval time.Duration `yaml:"interval"`
}

// Region is a region entry; Rect is x, y, width, height.
type Region struct {
	Name    string `yaml:"name"`
	Screen  string `yaml:"screen"`
	Kind    string `yaml:"kind"`
	Rect    []int  `yaml:"rect"`
	Cadence int    `yaml:"cadence"`
	Trigger string `yaml:"trigger"`
	Style   Style  `yaml:"style"`
}

// Style is the region style.
type Style struct {
	Face   string   `yaml:"face"`
	Border bool     `yaml:"border"`
	Invert bool     `yaml:"invert"`
	Lines  []string `yaml:"lines"`
}

// Default returns the compiled-in configuration.
func Default() (*Config, error) {
	c := new(Config)
	if err := yaml.Unmarshal(defaultYAML, c); err != nil {
		return nil, fmt.Errorf("config: default: %w", err)
	}
	return c, nil
}

// Load returns the defaults overlaid with the file at path. An empty path returns
// the defaults. The result is validated.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err = yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks everything that can be checked without hardware.
func (c *Config) Validate() error {
	if c.Panel.Width <= 0 || c.Panel.Height <= 0 {
		return fmt.Errorf("%w: panel size %dx%d", ErrInvalid, c.Panel.Width, c.Panel.Height)
	}
	if _, err := badge.ParseSpeed(c.Panel.Speed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Scheduler.Period <= 0 {
		return fmt.Errorf("%w: scheduler period %s", ErrInvalid, c.Scheduler.Period)
	}
	if c.Scheduler.CycleLength <= 0 {
		return fmt.Errorf("%w: scheduler cycle length %d", ErrInvalid, c.Scheduler.CycleLength)
	}
	if c.Clock.Period <= 0 || c.Clock.Layout == "" {
		return fmt.Errorf("%w: clock needs a period and a layout", ErrInvalid)
	}
	if c.Climate.Enabled && (c.Climate.Period <= 0 || c.Climate.Address == 0 || c.Climate.Address > 0x7f) {
		return fmt.Errorf("%w: climate period %s address %#x", ErrInvalid, c.Climate.Period, c.Climate.Address)
	}
	if c.Wifi.Enabled && (c.Wifi.Period <= 0 || c.Wifi.Interface == "") {
		return fmt.Errorf("%w: wifi needs an interface and a period", ErrInvalid)
	}
	if c.Wifi.Enabled && c.Store.Path == "" {
		return fmt.Errorf("%w: wifi counting needs a store path", ErrInvalid)
	}
	if c.Buttons.Enabled && c.Buttons.Debounce < 0 {
		return fmt.Errorf("%w: negative button debounce", ErrInvalid)
	}
	if c.Rotate.Interval < 0 {
		return fmt.Errorf("%w: negative rotate interval", ErrInvalid)
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("%w: no regions", ErrInvalid)
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Speed returns the parsed panel speed profile.
func (c *Config) Speed() badge.SpeedProfile {
	speed, _ := badge.ParseSpeed(c.Panel.Speed)
	return speed
}

// Bounds is the panel rectangle.
func (c *Config) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Panel.Width, c.Panel.Height)
}

// BuildRegions converts the region entries.
func (c *Config) BuildRegions() ([]region.Region, error) {
	out := make([]region.Region, 0, len(c.Regions))
	for i, r := range c.Regions {
		reg, err := r.region()
		if err != nil {
			return nil, fmt.Errorf("%w: region %d (%s): %v", ErrInvalid, i, r.Name, err)
		}
		out = append(out, reg)
	}
	return out, nil
}

// Registry builds the validated region registry, aligned to the panel's 8 pixel banks.
func (c *Config) Registry() (*region.Registry, error) {
	regions, err := c.BuildRegions()
	if err != nil {
		return nil, err
	}
	return region.NewRegistry(c.Bounds(), 8, regions...)
}

func (r Region) region() (region.Region, error) {
	if len(r.Rect) != 4 {
		return region.Region{}, fmt.Errorf("rect needs x, y, width and height, got %v", r.Rect)
	}
	s, err := screen.Parse(r.Screen)
	if err != nil {
		return region.Region{}, err
	}
	kind, err := region.ParseKind(r.Kind)
	if err != nil {
		return region.Region{}, err
	}
	trigger, err := region.ParseTrigger(r.Trigger)
	if err != nil {
		return region.Region{}, err
	}
	switch r.Style.Face {
	case "", "small", "regular", "bold":
	default:
		return region.Region{}, fmt.Errorf("unknown face %q", r.Style.Face)
	}

	x, y, w, h := r.Rect[0], r.Rect[1], r.Rect[2], r.Rect[3]
	return region.Region{
		Name:    r.Name,
		Screen:  s,
		Kind:    kind,
		Rect:    image.Rect(x, y, x+w, y+h),
		Cadence: r.Cadence,
		Trigger: trigger,
		Style: region.Style{
			Face:   r.Style.Face,
			Border: r.Style.Border,
			Invert: r.Style.Invert,
			Lines:  r.Style.Lines,
		},
	}, nil
}
