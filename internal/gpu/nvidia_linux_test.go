//go:build linux && cgo

package gpu

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

func TestBusyFromProcesses(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		compute     int
		computeRet  nvml.Return
		graphics    int
		graphicsRet nvml.Return
		want        bool
	}{
		{"no processes", 0, nvml.SUCCESS, 0, nvml.SUCCESS, false},
		{"compute process", 1, nvml.SUCCESS, 0, nvml.SUCCESS, true},
		{"graphics process", 0, nvml.SUCCESS, 2, nvml.SUCCESS, true},
		{"both queries fail", 0, nvml.ERROR_UNKNOWN, 0, nvml.ERROR_UNKNOWN, true},
		{"compute query fails, graphics empty", 0, nvml.ERROR_UNKNOWN, 0, nvml.SUCCESS, true},
		{"graphics query fails, compute empty", 0, nvml.SUCCESS, 0, nvml.ERROR_UNKNOWN, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got := busyFromProcesses(c.compute, c.computeRet, c.graphics, c.graphicsRet)
			if got != c.want {
				t.Errorf("busyFromProcesses = %v, want %v", got, c.want)
			}
		})
	}
}
