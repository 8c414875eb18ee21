// Package config loads gpubar configuration from a TOML file and merges
// command-line overrides on top.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.example.toml
var exampleConfig []byte

// DefaultTextFormat is the bar text when [text] format is not set.
const DefaultTextFormat = "{gpu_utilization}%|{mem_utilization}%"

// DefaultTooltipFormat lists every field; lines for telemetry the card
// does not expose are trimmed at startup (see format.TrimUnavailableLines).
const DefaultTooltipFormat = `GPU: {gpu_utilization}%
MEM USED: {mem_used:MiB}/{mem_total:MiB} MiB ({mem_utilization}%)
MEM R/W: {mem_rw}%
DEC: {decoder_utilization}%
ENC: {encoder_utilization}%
TEMP: {temperature:c}°C
POWER: {power:w} W
PSTATE: {p_state}
PLEVEL: {p_level}
FAN SPEED: {fan_speed}%
TX: {tx:MiB} MiB/s
RX: {rx:MiB} MiB/s`

const defaultIntervalMS = 1000

// Config is the merged view of file values, defaults, and overrides.
type Config struct {
	General GeneralConfig `toml:"general"`
	Text    SectionConfig `toml:"text"`
	Tooltip SectionConfig `toml:"tooltip"`

	// tooltipSet records whether the tooltip format came from the user
	// (file or flag) rather than the built-in default.
	tooltipSet bool
}

// GeneralConfig holds settings that are not tied to one output field.
type GeneralConfig struct {
	Interval int64 `toml:"interval"` // milliseconds
}

// SectionConfig is a [text] or [tooltip] block.
type SectionConfig struct {
	Format string `toml:"format"`
}

// Overrides carries command-line values. Zero fields leave the file
// configuration untouched.
type Overrides struct {
	Interval      int64 // milliseconds
	TextFormat    string
	TooltipFormat string
}

// DefaultPath returns the config location under the user config
// directory ($XDG_CONFIG_HOME or ~/.config on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "gpubar", "config.toml"), nil
}

// Load reads and parses a TOML config file. Unknown keys are rejected
// so typos surface instead of silently doing nothing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrInit loads the config at path, writing the embedded example
// there first if nothing exists yet (first run).
func LoadOrInit(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config dir: %w", err)
		}
		if err := os.WriteFile(path, exampleConfig, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.General.Interval <= 0 {
		c.General.Interval = defaultIntervalMS
	}
	if c.Text.Format == "" {
		c.Text.Format = DefaultTextFormat
	}
	if c.Tooltip.Format == "" {
		c.Tooltip.Format = DefaultTooltipFormat
	} else {
		c.tooltipSet = true
	}
}

// Apply merges command-line overrides; CLI beats file beats defaults.
func (c *Config) Apply(o Overrides) {
	if o.Interval > 0 {
		c.General.Interval = o.Interval
	}
	if o.TextFormat != "" {
		c.Text.Format = o.TextFormat
	}
	if o.TooltipFormat != "" {
		c.Tooltip.Format = o.TooltipFormat
		c.tooltipSet = true
	}
}

// Interval returns the refresh interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.General.Interval) * time.Millisecond
}

// TooltipIsDefault reports whether the tooltip format is the built-in
// one, in which case unavailable lines may be trimmed.
func (c *Config) TooltipIsDefault() bool {
	return !c.tooltipSet
}
