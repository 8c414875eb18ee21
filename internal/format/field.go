package format

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gpubar/internal/gpu"
)

// Kind enumerates the telemetry fields a template can reference.
type Kind int

const (
	KindUnknown Kind = iota
	KindGPUUtil
	KindMemUtil
	KindMemRW
	KindDecoderUtil
	KindEncoderUtil
	KindFanSpeed
	KindPState
	KindPLevel
	KindMemUsed
	KindMemTotal
	KindTX
	KindRX
	KindTemperature
	KindPower
)

// Field is one parsed placeholder. Quantity fields carry the display
// unit and an optional precision (-1 when unset).
type Field struct {
	Name      string // as written in the template
	Kind      Kind
	Mem       MemUnit
	Temp      TempUnit
	Power     PowerUnit
	Precision int
}

var percentKinds = map[string]Kind{
	"gpu_utilization":     KindGPUUtil,
	"mem_utilization":     KindMemUtil,
	"mem_rw":              KindMemRW,
	"decoder_utilization": KindDecoderUtil,
	"encoder_utilization": KindEncoderUtil,
	"fan_speed":           KindFanSpeed,
}

var memKinds = map[string]Kind{
	"mem_used":  KindMemUsed,
	"mem_total": KindMemTotal,
	"tx":        KindTX,
	"rx":        KindRX,
}

// parseField turns placeholder segments into a Field. An unrecognized
// name yields KindUnknown (rendered as N/A) with a warning rather than
// an error, so one typo does not take the whole bar down.
func parseField(name, unit, precision string) (Field, error) {
	f := Field{Name: name, Precision: -1}

	if precision != "" {
		p, err := strconv.Atoi(precision)
		if err != nil {
			return f, fmt.Errorf("field %q: invalid precision %q", name, precision)
		}
		f.Precision = p
	}

	if kind, ok := percentKinds[name]; ok {
		f.Kind = kind
		return f, nil
	}

	switch name {
	case "p_state":
		f.Kind = KindPState
	case "p_level":
		f.Kind = KindPLevel
	case "temperature":
		if unit == "" {
			return f, fmt.Errorf("field %q requires a unit", name)
		}
		u, err := parseTempUnit(unit)
		if err != nil {
			return f, fmt.Errorf("field %q: %w", name, err)
		}
		f.Kind = KindTemperature
		f.Temp = u
	case "power":
		if unit == "" {
			return f, fmt.Errorf("field %q requires a unit", name)
		}
		u, err := parsePowerUnit(unit)
		if err != nil {
			return f, fmt.Errorf("field %q: %w", name, err)
		}
		f.Kind = KindPower
		f.Power = u
	default:
		if kind, ok := memKinds[name]; ok {
			if unit == "" {
				return f, fmt.Errorf("field %q requires a unit", name)
			}
			u, err := parseMemUnit(unit)
			if err != nil {
				return f, fmt.Errorf("field %q: %w", name, err)
			}
			f.Kind = kind
			f.Mem = u
		} else {
			slog.Warn("unknown field in format string", "field", name)
			f.Kind = KindUnknown
		}
	}

	return f, nil
}

// available reports whether the snapshot carries a value for this field.
func (f Field) available(snap *gpu.Snapshot) bool {
	if snap == nil {
		return false
	}
	switch f.Kind {
	case KindGPUUtil:
		return snap.GPUUtil != nil
	case KindMemUtil:
		return snap.MemUtil() != nil
	case KindMemRW:
		return snap.MemRW != nil
	case KindDecoderUtil:
		return snap.DecoderUtil != nil
	case KindEncoderUtil:
		return snap.EncoderUtil != nil
	case KindFanSpeed:
		return snap.FanSpeed != nil
	case KindPState:
		return snap.PState != nil
	case KindPLevel:
		return snap.PLevel != nil
	case KindMemUsed:
		return snap.MemUsed != nil
	case KindMemTotal:
		return snap.MemTotal != nil
	case KindTX:
		return snap.TX != nil
	case KindRX:
		return snap.RX != nil
	case KindTemperature:
		return snap.Temperature != nil
	case KindPower:
		return snap.Power != nil
	default:
		return false
	}
}

const notAvailable = "N/A"

// render writes the field's value from the snapshot, or N/A when the
// value is missing or the field unknown.
func (f Field) render(snap *gpu.Snapshot) string {
	if !f.available(snap) {
		return notAvailable
	}

	switch f.Kind {
	case KindGPUUtil:
		return strconv.Itoa(int(*snap.GPUUtil))
	case KindMemUtil:
		return strconv.Itoa(int(*snap.MemUtil()))
	case KindMemRW:
		return strconv.Itoa(int(*snap.MemRW))
	case KindDecoderUtil:
		return strconv.Itoa(int(*snap.DecoderUtil))
	case KindEncoderUtil:
		return strconv.Itoa(int(*snap.EncoderUtil))
	case KindFanSpeed:
		return strconv.Itoa(int(*snap.FanSpeed))
	case KindPState:
		return fmt.Sprintf("P%d", *snap.PState)
	case KindPLevel:
		return *snap.PLevel
	case KindMemUsed:
		return formatNumber(f.Mem.Convert(float64(*snap.MemUsed)), f.Precision)
	case KindMemTotal:
		return formatNumber(f.Mem.Convert(float64(*snap.MemTotal)), f.Precision)
	case KindTX:
		return formatNumber(f.Mem.Convert(*snap.TX), f.Precision)
	case KindRX:
		return formatNumber(f.Mem.Convert(*snap.RX), f.Precision)
	case KindTemperature:
		return formatNumber(f.Temp.Convert(*snap.Temperature), f.Precision)
	case KindPower:
		return formatNumber(f.Power.Convert(*snap.Power), f.Precision)
	default:
		return notAvailable
	}
}

// formatNumber renders a value with at most precision decimal places,
// trimming trailing zeros either way. A negative precision means "as
// short as possible".
func formatNumber(v float64, precision int) string {
	if precision < 0 {
		// Shortest representation at float32 accuracy, matching the
		// width telemetry values actually carry.
		return strconv.FormatFloat(float64(float32(v)), 'f', -1, 32)
	}
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
