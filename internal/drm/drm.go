// Package drm enumerates GPU cards exposed under /sys/class/drm.
//
// Each cardN directory is a DRM node whose device/ symlink points at the
// underlying PCI device. Vendor and power state are read straight from
// sysfs attributes, so no udev or driver-specific library is needed.
package drm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SysfsRoot is the default DRM class directory. Tests point Scan at a
// fake tree instead.
const SysfsRoot = "/sys/class/drm"

// Vendor identifies the GPU manufacturer from the PCI vendor ID.
type Vendor string

const (
	VendorNVIDIA  Vendor = "nvidia"
	VendorAMD     Vendor = "amd"
	VendorIntel   Vendor = "intel"
	VendorUnknown Vendor = "unknown"
)

// Card is one DRM card node and its PCI device directory.
type Card struct {
	Index  int
	Name   string // e.g. "card0"
	Path   string // <root>/cardN/device
	Vendor Vendor
}

// Scan lists the cardN entries under root, sorted by index. Connector
// nodes like card0-HDMI-A-1 are skipped.
func Scan(root string) ([]Card, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var cards []Card
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(name, "card"))
		if err != nil {
			continue
		}

		devicePath := filepath.Join(root, name, "device")
		cards = append(cards, Card{
			Index:  index,
			Name:   name,
			Path:   devicePath,
			Vendor: readVendor(devicePath),
		})
	}

	sort.Slice(cards, func(i, j int) bool { return cards[i].Index < cards[j].Index })
	return cards, nil
}

// Select scans root and returns the card with the given index.
func Select(root string, index int) (Card, error) {
	cards, err := Scan(root)
	if err != nil {
		return Card{}, err
	}
	for _, c := range cards {
		if c.Index == index {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("no GPU with index %d (found %d cards)", index, len(cards))
}

// Model returns a human-readable device name. Drivers that populate
// product_name (amdgpu on recent kernels) get a proper name; otherwise
// the PCI device ID is returned.
func (c Card) Model() string {
	if s, err := readAttr(filepath.Join(c.Path, "product_name")); err == nil && s != "" {
		return s
	}
	if s, err := readAttr(filepath.Join(c.Path, "device")); err == nil && s != "" {
		return s
	}
	return "unknown"
}

// PoweredOn reports whether the PCI device is awake. A discrete GPU with
// runtime PM may sit in D3cold, and reading telemetry would wake it.
// A missing power_state attribute counts as powered on.
func (c Card) PoweredOn() bool {
	s, err := readAttr(filepath.Join(c.Path, "power_state"))
	if err != nil {
		return true
	}
	return s != "D3cold"
}

func readVendor(devicePath string) Vendor {
	s, err := readAttr(filepath.Join(devicePath, "vendor"))
	if err != nil {
		return VendorUnknown
	}
	switch s {
	case "0x10de":
		return VendorNVIDIA
	case "0x1002":
		return VendorAMD
	case "0x8086":
		return VendorIntel
	}
	return VendorUnknown
}

func readAttr(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
