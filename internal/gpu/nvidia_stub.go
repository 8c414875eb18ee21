//go:build !linux || !cgo

package gpu

import (
	"errors"

	"gpubar/internal/drm"
)

// ErrNVMLUnavailable is returned when the binary was built without NVML
// support (non-Linux target or cgo disabled).
var ErrNVMLUnavailable = errors.New("NVIDIA support requires a Linux build with cgo")

type NVIDIA struct{}

func NewNVIDIA(index int) (*NVIDIA, error) {
	return nil, ErrNVMLUnavailable
}

func (n *NVIDIA) Vendor() drm.Vendor { return drm.VendorNVIDIA }

func (n *NVIDIA) Snapshot() (*Snapshot, error) { return nil, ErrNVMLUnavailable }

func (n *NVIDIA) Close() error { return nil }
