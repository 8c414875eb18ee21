// Package gpu queries telemetry from a single GPU.
//
// Two backends exist: NVML for NVIDIA cards and the amdgpu sysfs
// interface for AMD cards. Both produce the same Snapshot shape; fields
// a driver does not expose stay nil and render as N/A downstream.
package gpu

import (
	"fmt"
	"math"

	"gpubar/internal/drm"
)

// Snapshot is one telemetry reading. Pointer fields are nil when the
// backend cannot provide the value.
type Snapshot struct {
	// Busy reports whether any process is using the GPU. Backends
	// without process accounting always report true.
	Busy bool

	GPUUtil     *uint8   // core utilization, percent
	MemUsed     *uint64  // bytes
	MemTotal    *uint64  // bytes
	MemRW       *uint8   // memory data bus utilization, percent
	DecoderUtil *uint8   // percent
	EncoderUtil *uint8   // percent
	Temperature *float64 // degrees Celsius
	Power       *float64 // watts
	PState      *uint8   // NVIDIA performance state, 0..15
	PLevel      *string  // AMD performance level, e.g. "auto"
	FanSpeed    *uint8   // percent
	TX          *float64 // PCIe transmit throughput, bytes per second
	RX          *float64 // PCIe receive throughput, bytes per second
}

// MemUtil computes used/total memory as a rounded percentage, or nil if
// either side is unknown.
func (s *Snapshot) MemUtil() *uint8 {
	if s.MemUsed == nil || s.MemTotal == nil || *s.MemTotal == 0 {
		return nil
	}
	pct := uint8(math.Round(float64(*s.MemUsed) / float64(*s.MemTotal) * 100))
	return &pct
}

// Backend reads telemetry from one GPU.
type Backend interface {
	Vendor() drm.Vendor
	Snapshot() (*Snapshot, error)
	Close() error
}

// ForCard picks a backend for the card's vendor. The NVML device index
// matches the DRM card index passed on the command line.
func ForCard(card drm.Card) (Backend, error) {
	switch card.Vendor {
	case drm.VendorNVIDIA:
		return NewNVIDIA(card.Index)
	case drm.VendorAMD:
		return NewAMD(card), nil
	default:
		return nil, fmt.Errorf("unsupported GPU vendor %q on %s", card.Vendor, card.Name)
	}
}
