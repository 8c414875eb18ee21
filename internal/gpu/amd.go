package gpu

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gpubar/internal/drm"
)

// AMD reads amdgpu telemetry from the card's sysfs device directory.
// Every attribute is optional: older kernels and APUs omit several of
// them, so a missing file just leaves the field nil.
type AMD struct {
	card   drm.Card
	logger *slog.Logger
}

func NewAMD(card drm.Card) *AMD {
	return &AMD{
		card:   card,
		logger: slog.With("component", "gpu", "backend", "amd", "card", card.Name),
	}
}

func (a *AMD) Vendor() drm.Vendor { return drm.VendorAMD }

func (a *AMD) Close() error { return nil }

func (a *AMD) Snapshot() (*Snapshot, error) {
	if _, err := os.Stat(a.card.Path); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		// The sysfs interface has no per-process accounting, so the
		// card always counts as busy.
		Busy: true,
	}

	if v, ok := a.readUint("gpu_busy_percent"); ok {
		util := clampPercent(v)
		snap.GPUUtil = &util
	}
	if used, ok := a.readUint("mem_info_vram_used"); ok {
		if total, ok := a.readUint("mem_info_vram_total"); ok && total > 0 {
			snap.MemUsed = &used
			snap.MemTotal = &total
		}
	}
	if v, ok := a.readUint("mem_busy_percent"); ok {
		util := clampPercent(v)
		snap.MemRW = &util
	}
	if s, ok := a.readString("power_dpm_force_performance_level"); ok {
		snap.PLevel = &s
	}

	a.readHwmon(snap)
	return snap, nil
}

// readHwmon fills temperature, power, and fan speed from the first
// hwmon directory under the device (amdgpu registers exactly one).
func (a *AMD) readHwmon(snap *Snapshot) {
	root := filepath.Join(a.card.Path, "hwmon")
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) == 0 {
		a.logger.Debug("no hwmon directory", "path", root, "error", err)
		return
	}
	hwmon := filepath.Join(root, entries[0].Name())

	// temp1_input is in millidegrees Celsius.
	if v, ok := readUintFile(filepath.Join(hwmon, "temp1_input"), a.logger); ok {
		t := float64(v) / 1000
		snap.Temperature = &t
	}

	// power1_average (microwatts) disappeared from some ASICs in favor
	// of power1_input; accept either.
	for _, attr := range []string{"power1_average", "power1_input"} {
		if v, ok := readUintFile(filepath.Join(hwmon, attr), a.logger); ok {
			w := float64(v) / 1e6
			snap.Power = &w
			break
		}
	}

	if pct, ok := readFanPercent(hwmon, a.logger); ok {
		snap.FanSpeed = &pct
	}
}

// readFanPercent prefers tachometer readings (fan1_input against
// fan1_max) and falls back to the PWM duty cycle.
func readFanPercent(hwmon string, logger *slog.Logger) (uint8, bool) {
	if rpm, ok := readUintFile(filepath.Join(hwmon, "fan1_input"), logger); ok {
		if max, ok := readUintFile(filepath.Join(hwmon, "fan1_max"), logger); ok && max > 0 {
			return clampPercent(rpm * 100 / max), true
		}
	}
	if pwm, ok := readUintFile(filepath.Join(hwmon, "pwm1"), logger); ok {
		max := uint64(255)
		if v, ok := readUintFile(filepath.Join(hwmon, "pwm1_max"), logger); ok && v > 0 {
			max = v
		}
		return clampPercent(pwm * 100 / max), true
	}
	return 0, false
}

func (a *AMD) readUint(attr string) (uint64, bool) {
	return readUintFile(filepath.Join(a.card.Path, attr), a.logger)
}

func (a *AMD) readString(attr string) (string, bool) {
	path := filepath.Join(a.card.Path, attr)
	b, err := os.ReadFile(path)
	if err != nil {
		a.logger.Debug("sysfs attribute unavailable", "path", path, "error", err)
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func readUintFile(path string, logger *slog.Logger) (uint64, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("sysfs attribute unavailable", "path", path, "error", err)
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		logger.Warn("malformed sysfs attribute", "path", path, "error", err)
		return 0, false
	}
	return v, true
}

func clampPercent(v uint64) uint8 {
	if v > 100 {
		return 100
	}
	return uint8(v)
}
