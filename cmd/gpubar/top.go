package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gpubar/internal/config"
	"gpubar/internal/drm"
	"gpubar/internal/gpu"
	"gpubar/internal/tui"
)

var topFlags struct {
	gpu      int
	interval int64
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Interactive GPU dashboard",
	Long:  "Full-screen terminal dashboard refreshing at the configured interval. Quit with q.",
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVar(&topFlags.gpu, "gpu", 0, "DRM card index of the GPU to monitor")
	topCmd.Flags().Int64Var(&topFlags.interval, "interval", 0, "Refresh interval in milliseconds (overrides config)")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("top requires a terminal")
	}

	cfg, _, err := loadMergedConfig(config.Overrides{Interval: topFlags.interval})
	if err != nil {
		return err
	}

	card, err := drm.Select(drm.SysfsRoot, topFlags.gpu)
	if err != nil {
		return err
	}

	backend, err := gpu.ForCard(card)
	if err != nil {
		return err
	}
	defer backend.Close()

	return tui.Run(card, backend, cfg.Interval())
}
