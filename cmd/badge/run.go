package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/badge"
	"github.com/BeatGlow/badge/conn"
	"github.com/BeatGlow/badge/internal/config"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/producer/button"
	"github.com/BeatGlow/badge/producer/climate"
	"github.com/BeatGlow/badge/producer/clock"
	"github.com/BeatGlow/badge/producer/rotate"
	"github.com/BeatGlow/badge/producer/wifi"
	"github.com/BeatGlow/badge/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the badge panel",
	Long: `Opens the panel on the SPI bus, starts the producers and runs the refresh
loop until the process is killed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logging.Sync()

		if _, err = host.Init(); err != nil {
			return err
		}

		panel, err := openPanel(cfg)
		if err != nil {
			return err
		}
		sys, err := newSystem(cfg, panel)
		if err != nil {
			return err
		}
		if err = startProducers(cfg, sys); err != nil {
			return err
		}
		if err = sys.sched.Boot(); err != nil {
			return err
		}
		sys.sched.Run()
		return nil
	},
}

func pin(name string) gpio.PinIO {
	if name == "" {
		return nil
	}
	return gpioreg.ByName(name)
}

func openPanel(cfg *config.Config) (*badge.UC8151, error) {
	spiConfig := badge.DefaultSPIConfig
	spiConfig.Bus = cfg.Panel.SPI.Bus
	spiConfig.Device = cfg.Panel.SPI.Device
	spiConfig.SpeedHz = cfg.Panel.SPI.SpeedHz
	spiConfig.Reset = pin(cfg.Panel.Pins.Reset)
	spiConfig.DC = pin(cfg.Panel.Pins.DC)
	spiConfig.Busy = pin(cfg.Panel.Pins.Busy)
	if cs := pin(cfg.Panel.Pins.CS); cs != nil {
		spiConfig.CS = cs
	}

	c, err := badge.OpenSPI(&spiConfig)
	if err != nil {
		return nil, err
	}
	panel, err := badge.NewUC8151(c, &badge.Config{
		Width:       cfg.Panel.Width,
		Height:      cfg.Panel.Height,
		Inverted:    cfg.Panel.Inverted,
		BusyTimeout: cfg.Panel.BusyTimeout,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	logging.Info("panel opened", zap.Stringer("panel", panel), zap.String("conn", c.String()))
	return panel, nil
}

func startProducers(cfg *config.Config, sys *system) error {
	clk := clock.New(sys.surface, nil, cfg.Clock.Layout)
	clk.Publish()
	go clk.Run(cfg.Clock.Period)

	if cfg.Climate.Enabled {
		bus, err := conn.OpenI2C(cfg.Climate.Bus, uint8(cfg.Climate.Address))
		if err != nil {
			return fmt.Errorf("climate sensor: %w", err)
		}
		sensor := climate.NewSHTC3(bus.Dev())
		if err = sensor.Reset(); err != nil {
			logging.Warn("climate sensor reset failed", zap.Error(err))
		}
		go climate.New(sys.surface, sensor).Run(cfg.Climate.Period)
	}

	if cfg.Wifi.Enabled {
		st := &store.FileStore{Path: cfg.Store.Path, SectorSize: cfg.Store.SectorSize}
		producer := wifi.New(sys.surface, &wifi.IWScanner{Interface: cfg.Wifi.Interface}, st)
		if err := producer.Restore(); err != nil {
			logging.Error("restoring counters failed, counting from zero", zap.Error(err))
		}
		go producer.Run(cfg.Wifi.Period)
	}

	if cfg.Buttons.Enabled {
		var buttons []button.Button
		for _, b := range []struct {
			name, pin string
			action    button.Action
		}{
			{"a", cfg.Buttons.A, button.NextScreen},
			{"b", cfg.Buttons.B, button.PreviousScreen},
			{"c", cfg.Buttons.C, button.NextImage},
			{"up", cfg.Buttons.Up, button.ForceRefresh},
			{"down", cfg.Buttons.Down, button.PreviousImage},
		} {
			if b.pin == "" {
				continue
			}
			buttons = append(buttons, button.Button{Name: b.name, Pin: pin(b.pin), Action: b.action})
		}
		if err := button.Setup(buttons...); err != nil {
			return err
		}
		button.New(sys.surface, sys.machine, cfg.Buttons.Debounce).Run(buttons...)
	}

	go rotate.Run(sys.surface, cfg.Rotate.Interval)
	return nil
}
