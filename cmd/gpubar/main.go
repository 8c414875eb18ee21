package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gpubar/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "gpubar",
	Short:         "GPU telemetry for Waybar",
	Long:          "Queries GPU telemetry (NVIDIA via NVML, AMD via sysfs) and prints Waybar JSON updates on stdout.",
	RunE:          runStatus,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig  string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: $XDG_CONFIG_HOME/gpubar/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable output")

	// Logs go to stderr: stdout is reserved for Waybar JSON.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadMergedConfig resolves the config path, loads the file (creating it
// on first run when the default path is used), and applies CLI overrides.
func loadMergedConfig(overrides config.Overrides) (*config.Config, string, error) {
	path := flagConfig
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		cfg, err := config.LoadOrInit(defaultPath)
		if err != nil {
			return nil, "", err
		}
		cfg.Apply(overrides)
		return cfg, defaultPath, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	cfg.Apply(overrides)
	return cfg, path, nil
}
