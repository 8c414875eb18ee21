package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[general]
interval = 2500

[text]
format = "{gpu_utilization}%"

[tooltip]
format = "TEMP: {temperature:c}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Interval != 2500 {
		t.Errorf("Interval = %d, want 2500", cfg.General.Interval)
	}
	if cfg.Interval() != 2500*time.Millisecond {
		t.Errorf("Interval() = %v, want 2.5s", cfg.Interval())
	}
	if cfg.Text.Format != "{gpu_utilization}%" {
		t.Errorf("Text.Format = %q", cfg.Text.Format)
	}
	if cfg.Tooltip.Format != "TEMP: {temperature:c}" {
		t.Errorf("Tooltip.Format = %q", cfg.Tooltip.Format)
	}
	if cfg.TooltipIsDefault() {
		t.Error("tooltip came from the file, TooltipIsDefault should be false")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Interval != 1000 {
		t.Errorf("Interval = %d, want default 1000", cfg.General.Interval)
	}
	if cfg.Text.Format != DefaultTextFormat {
		t.Errorf("Text.Format = %q, want default", cfg.Text.Format)
	}
	if cfg.Tooltip.Format != DefaultTooltipFormat {
		t.Errorf("Tooltip.Format = %q, want default", cfg.Tooltip.Format)
	}
	if !cfg.TooltipIsDefault() {
		t.Error("TooltipIsDefault should be true without a file value")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[general]
intervall = 1000
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "[general\ninterval = ")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadOrInitWritesExample(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "gpubar", "config.toml")

	cfg, err := LoadOrInit(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	// The example sets the default text format explicitly.
	if cfg.Text.Format != DefaultTextFormat {
		t.Errorf("Text.Format = %q, want default", cfg.Text.Format)
	}
	if !cfg.TooltipIsDefault() {
		t.Error("example config should leave the tooltip at its default")
	}

	// Second call must load the existing file, not rewrite it.
	if err := os.WriteFile(path, []byte("[general]\ninterval = 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrInit(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Interval != 42 {
		t.Errorf("Interval = %d, want 42 from existing file", cfg.General.Interval)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[general]
interval = 2000

[text]
format = "file-text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Apply(Overrides{})
	if cfg.General.Interval != 2000 || cfg.Text.Format != "file-text" {
		t.Error("zero overrides must not change file values")
	}
	if !cfg.TooltipIsDefault() {
		t.Error("tooltip should still be default")
	}

	cfg.Apply(Overrides{Interval: 500, TextFormat: "cli-text", TooltipFormat: "cli-tooltip"})
	if cfg.General.Interval != 500 {
		t.Errorf("Interval = %d, want CLI override 500", cfg.General.Interval)
	}
	if cfg.Text.Format != "cli-text" {
		t.Errorf("Text.Format = %q, want cli-text", cfg.Text.Format)
	}
	if cfg.Tooltip.Format != "cli-tooltip" {
		t.Errorf("Tooltip.Format = %q, want cli-tooltip", cfg.Tooltip.Format)
	}
	if cfg.TooltipIsDefault() {
		t.Error("CLI tooltip override should mark the tooltip as user-set")
	}
}

func TestWatch(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "[general]\ninterval = 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("[general]\ninterval = 2000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}
