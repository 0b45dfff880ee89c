// Badge drives an e-paper name badge.
//
// Usage:
//
//	badge run     [--config badge.yaml]   drive the panel on the SPI bus
//	badge preview [--output badge.png]    render to a PNG without hardware
//	badge version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BeatGlow/badge/internal/config"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/internal/version"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "badge",
	Short: "E-paper badge display",
	Long: `Keeps an e-paper badge current: clock, climate readings, a count of the
wifi networks seen and a rotating image, refreshing as little of the panel
as possible.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file, merged over the defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("badge %s\n", version.String())
	},
}

// setup loads the configuration and initializes logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if err = logging.Initialize(level); err != nil {
		return nil, err
	}
	return cfg, nil
}
