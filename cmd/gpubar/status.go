package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gpubar/internal/config"
	"gpubar/internal/drm"
	"gpubar/internal/format"
	"gpubar/internal/gpu"
	"gpubar/internal/waybar"
)

var statusFlags struct {
	gpu           int
	interval      int64
	textFormat    string
	tooltipFormat string
	once          bool
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&statusFlags.gpu, "gpu", 0, "DRM card index of the GPU to monitor (the N in /dev/dri/cardN)")
	f.Int64Var(&statusFlags.interval, "interval", 0, "Refresh interval in milliseconds (overrides config)")
	f.StringVar(&statusFlags.textFormat, "text-format", "", "Bar text format, e.g. \"{gpu_utilization}%\" (overrides config)")
	f.StringVar(&statusFlags.tooltipFormat, "tooltip-format", "", "Tooltip format (overrides config)")
	f.BoolVar(&statusFlags.once, "once", false, "Print a single update and exit")
}

func statusOverrides() config.Overrides {
	return config.Overrides{
		Interval:      statusFlags.interval,
		TextFormat:    statusFlags.textFormat,
		TooltipFormat: statusFlags.tooltipFormat,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadMergedConfig(statusOverrides())
	if err != nil {
		return err
	}

	card, err := drm.Select(drm.SysfsRoot, statusFlags.gpu)
	if err != nil {
		return err
	}
	slog.Info("monitoring GPU", "card", card.Name, "vendor", card.Vendor, "model", card.Model())

	backend, err := gpu.ForCard(card)
	if err != nil {
		return err
	}
	defer backend.Close()

	renderer, err := newRenderer(cfg, backend)
	if err != nil {
		return err
	}

	writer := waybar.NewWriter(os.Stdout)
	emit := func(r *waybar.Renderer) error {
		// A card in D3cold is not queried: telemetry reads would wake it.
		if !card.PoweredOn() {
			return writer.Write(r.Render(nil))
		}
		snap, err := backend.Snapshot()
		if err != nil {
			return fmt.Errorf("querying %s: %w", card.Name, err)
		}
		return writer.Write(r.Render(snap))
	}

	if statusFlags.once {
		return emit(renderer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	// Format edits in the config file take effect without restarting
	// the bar. CLI overrides keep winning over reloaded file values.
	var mu sync.Mutex
	reload := func() {
		fresh, err := config.Load(cfgPath)
		if err != nil {
			slog.Error("config reload failed", "path", cfgPath, "error", err)
			return
		}
		fresh.Apply(statusOverrides())
		r, err := newRenderer(fresh, backend)
		if err != nil {
			slog.Error("config reload failed", "path", cfgPath, "error", err)
			return
		}
		mu.Lock()
		renderer = r
		ticker.Reset(fresh.Interval())
		mu.Unlock()
		slog.Info("config reloaded", "path", cfgPath)
	}
	go func() {
		if err := config.Watch(ctx, cfgPath, reload); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		}
	}()

	for {
		mu.Lock()
		r := renderer
		mu.Unlock()
		if err := emit(r); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// newRenderer parses both templates. When the tooltip is the built-in
// default, lines referencing telemetry this card cannot provide are
// dropped first, based on a probe snapshot.
func newRenderer(cfg *config.Config, backend gpu.Backend) (*waybar.Renderer, error) {
	text, err := format.Parse(cfg.Text.Format)
	if err != nil {
		return nil, fmt.Errorf("text format: %w", err)
	}

	tooltipFormat := cfg.Tooltip.Format
	if cfg.TooltipIsDefault() {
		if snap, err := backend.Snapshot(); err == nil {
			trimmed, err := format.TrimUnavailableLines(tooltipFormat, snap)
			if err != nil {
				return nil, fmt.Errorf("tooltip format: %w", err)
			}
			tooltipFormat = trimmed
		}
	}
	tooltip, err := format.Parse(tooltipFormat)
	if err != nil {
		return nil, fmt.Errorf("tooltip format: %w", err)
	}

	return waybar.NewRenderer(text, tooltip), nil
}
