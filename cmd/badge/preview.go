package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BeatGlow/badge"
	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/producer/clock"
	"github.com/BeatGlow/badge/screen"
)

var (
	previewOutput   string
	previewTicks    int
	previewScreen   string
	previewImage    int
	previewClock    string
	previewWifi     uint32
	previewTemp     int
	previewHumidity int
	previewNetworks []string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the badge to a PNG file",
	Long: `Runs the refresh loop against an in-memory panel for a number of ticks,
without sleeping, and writes what would be visible on the glass.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logging.Sync()

		s, err := screen.Parse(previewScreen)
		if err != nil {
			return err
		}
		if previewImage < 0 || previewImage >= images.Count {
			return fmt.Errorf("image ordinal %d out of range", previewImage)
		}

		panel := badge.NewMemory(cfg.Panel.Width, cfg.Panel.Height)
		sys, err := newSystem(cfg, panel)
		if err != nil {
			return err
		}

		sys.surface.SetWifiCount(previewWifi)
		sys.surface.SetClimate(previewTemp, previewHumidity)
		sys.surface.SetNetworks(previewNetworks)
		sys.surface.SetImage(int(images.FromOrdinal(previewImage)))
		if previewClock != "" {
			sys.surface.SetClock(previewClock)
		} else {
			clock.New(sys.surface, nil, cfg.Clock.Layout).Publish()
		}
		sys.machine.Select(s)

		if err = sys.sched.Boot(); err != nil {
			return err
		}
		for i := 0; i < previewTicks; i++ {
			sys.sched.Step()
		}

		f, err := os.Create(previewOutput)
		if err != nil {
			return err
		}
		if err = panel.WritePNG(f); err != nil {
			_ = f.Close()
			return err
		}
		if err = f.Close(); err != nil {
			return err
		}

		stats := sys.sched.Stats()
		fmt.Printf("%s: %d ticks, %d full refreshes, %d partial commits, %d failures\n",
			previewOutput, stats.Ticks, stats.FullRefreshes, stats.PartialCommits, stats.Failures)
		return nil
	},
}

func init() {
	flags := previewCmd.Flags()
	flags.StringVarP(&previewOutput, "output", "o", "badge.png", "PNG file to write")
	flags.IntVarP(&previewTicks, "ticks", "n", 1, "scheduler ticks to run after boot")
	flags.StringVar(&previewScreen, "screen", screen.Badge.String(), "screen to show (badge, wifi-list)")
	flags.IntVar(&previewImage, "image", 0, fmt.Sprintf("image ordinal (0-%d)", images.Count-1))
	flags.StringVar(&previewClock, "clock", "", "clock text, defaults to the current time")
	flags.Uint32Var(&previewWifi, "wifi", 0, "wifi networks counted")
	flags.IntVar(&previewTemp, "temperature", 72, "temperature in °F")
	flags.IntVar(&previewHumidity, "humidity", 40, "relative humidity in %")
	flags.StringSliceVar(&previewNetworks, "networks", nil, "network names for the wifi list")
}
