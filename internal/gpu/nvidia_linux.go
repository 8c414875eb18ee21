//go:build linux && cgo

package gpu

import (
	"fmt"
	"log/slog"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpubar/internal/drm"
)

// NVIDIA reads telemetry through NVML. The library is initialized once
// in NewNVIDIA and shut down in Close, so a long-running status loop
// reuses the same device handle.
type NVIDIA struct {
	device nvml.Device
	logger *slog.Logger
}

func NewNVIDIA(index int) (*NVIDIA, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("initializing NVML: %s", nvml.ErrorString(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, fmt.Errorf("opening NVML device %d: %s", index, nvml.ErrorString(ret))
	}

	return &NVIDIA{
		device: device,
		logger: slog.With("component", "gpu", "backend", "nvidia", "index", index),
	}, nil
}

func (n *NVIDIA) Vendor() drm.Vendor { return drm.VendorNVIDIA }

func (n *NVIDIA) Close() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("shutting down NVML: %s", nvml.ErrorString(ret))
	}
	return nil
}

// Snapshot queries every supported NVML counter. A counter the device
// does not support leaves its field nil instead of failing the whole
// reading; laptops and older cards miss several of them.
func (n *NVIDIA) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{Busy: n.hasRunningProcesses()}

	if util, ret := n.device.GetUtilizationRates(); n.supported("utilization", ret) {
		gpu := clampPercent(uint64(util.Gpu))
		mem := clampPercent(uint64(util.Memory))
		snap.GPUUtil = &gpu
		snap.MemRW = &mem
	}
	if mem, ret := n.device.GetMemoryInfo(); n.supported("memory", ret) {
		used, total := mem.Used, mem.Total
		snap.MemUsed = &used
		snap.MemTotal = &total
	}
	if util, _, ret := n.device.GetDecoderUtilization(); n.supported("decoder", ret) {
		dec := clampPercent(uint64(util))
		snap.DecoderUtil = &dec
	}
	if util, _, ret := n.device.GetEncoderUtilization(); n.supported("encoder", ret) {
		enc := clampPercent(uint64(util))
		snap.EncoderUtil = &enc
	}
	if temp, ret := n.device.GetTemperature(nvml.TEMPERATURE_GPU); n.supported("temperature", ret) {
		t := float64(temp)
		snap.Temperature = &t
	}
	if mw, ret := n.device.GetPowerUsage(); n.supported("power", ret) {
		w := float64(mw) / 1000
		snap.Power = &w
	}
	if state, ret := n.device.GetPerformanceState(); n.supported("pstate", ret) {
		if state >= nvml.PSTATE_0 && state <= nvml.PSTATE_15 {
			p := uint8(state)
			snap.PState = &p
		}
	}
	if speed, ret := n.device.GetFanSpeed(); n.supported("fan", ret) {
		fan := clampPercent(uint64(speed))
		snap.FanSpeed = &fan
	}
	// PCIe throughput is reported in KB/s.
	if kb, ret := n.device.GetPcieThroughput(nvml.PCIE_UTIL_TX_BYTES); n.supported("pcie tx", ret) {
		tx := float64(kb) * 1000
		snap.TX = &tx
	}
	if kb, ret := n.device.GetPcieThroughput(nvml.PCIE_UTIL_RX_BYTES); n.supported("pcie rx", ret) {
		rx := float64(kb) * 1000
		snap.RX = &rx
	}

	return snap, nil
}

func (n *NVIDIA) hasRunningProcesses() bool {
	compute, computeRet := n.device.GetComputeRunningProcesses()
	graphics, graphicsRet := n.device.GetGraphicsRunningProcesses()
	return busyFromProcesses(len(compute), computeRet, len(graphics), graphicsRet)
}

// busyFromProcesses decides the Busy flag from both process queries. Any
// process on either engine means busy. If either query failed, the
// process state is unknown, so assume busy rather than report a false
// Idle.
func busyFromProcesses(compute int, computeRet nvml.Return, graphics int, graphicsRet nvml.Return) bool {
	if computeRet == nvml.SUCCESS && compute > 0 {
		return true
	}
	if graphicsRet == nvml.SUCCESS && graphics > 0 {
		return true
	}
	return computeRet != nvml.SUCCESS || graphicsRet != nvml.SUCCESS
}

// supported reports whether a counter query succeeded, logging anything
// other than a clean not-supported response.
func (n *NVIDIA) supported(counter string, ret nvml.Return) bool {
	switch ret {
	case nvml.SUCCESS:
		return true
	case nvml.ERROR_NOT_SUPPORTED:
		return false
	default:
		n.logger.Debug("NVML query failed", "counter", counter, "error", nvml.ErrorString(ret))
		return false
	}
}
