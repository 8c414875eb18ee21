package format

import "fmt"

// MemUnit is a display unit for memory sizes and throughput. Names are
// case-sensitive: KiB is a kibibyte, Kib a kibibit, KB a kilobyte, Kb a
// kilobit.
type MemUnit string

const (
	MemKiB MemUnit = "KiB"
	MemMiB MemUnit = "MiB"
	MemGiB MemUnit = "GiB"
	MemKB  MemUnit = "KB"
	MemMB  MemUnit = "MB"
	MemGB  MemUnit = "GB"
	MemKib MemUnit = "Kib"
	MemMib MemUnit = "Mib"
	MemGib MemUnit = "Gib"
	MemKb  MemUnit = "Kb"
	MemMb  MemUnit = "Mb"
	MemGb  MemUnit = "Gb"
)

// bytesPerUnit holds how many bytes one unit represents.
var bytesPerUnit = map[MemUnit]float64{
	MemKiB: 1 << 10,
	MemMiB: 1 << 20,
	MemGiB: 1 << 30,
	MemKB:  1e3,
	MemMB:  1e6,
	MemGB:  1e9,
	MemKib: (1 << 10) / 8.0,
	MemMib: (1 << 20) / 8.0,
	MemGib: (1 << 30) / 8.0,
	MemKb:  1e3 / 8.0,
	MemMb:  1e6 / 8.0,
	MemGb:  1e9 / 8.0,
}

func parseMemUnit(s string) (MemUnit, error) {
	u := MemUnit(s)
	if _, ok := bytesPerUnit[u]; !ok {
		return "", fmt.Errorf("invalid memory unit %q", s)
	}
	return u, nil
}

// Convert expresses a byte count in this unit.
func (u MemUnit) Convert(bytes float64) float64 {
	return bytes / bytesPerUnit[u]
}

// TempUnit is a display unit for temperatures. Parsed case-insensitively
// as c, f, or k.
type TempUnit byte

const (
	TempCelsius TempUnit = iota
	TempFahrenheit
	TempKelvin
)

func parseTempUnit(s string) (TempUnit, error) {
	switch s {
	case "c", "C":
		return TempCelsius, nil
	case "f", "F":
		return TempFahrenheit, nil
	case "k", "K":
		return TempKelvin, nil
	}
	return 0, fmt.Errorf("invalid temperature unit %q", s)
}

// Convert expresses a temperature in degrees Celsius in this unit.
func (u TempUnit) Convert(celsius float64) float64 {
	switch u {
	case TempFahrenheit:
		return celsius*9/5 + 32
	case TempKelvin:
		return celsius + 273.15
	default:
		return celsius
	}
}

// PowerUnit is a display unit for power draw: w or kw.
type PowerUnit byte

const (
	PowerWatt PowerUnit = iota
	PowerKilowatt
)

func parsePowerUnit(s string) (PowerUnit, error) {
	switch s {
	case "w":
		return PowerWatt, nil
	case "kw":
		return PowerKilowatt, nil
	}
	return 0, fmt.Errorf("invalid power unit %q", s)
}

// Convert expresses a power draw in watts in this unit.
func (u PowerUnit) Convert(watts float64) float64 {
	if u == PowerKilowatt {
		return watts / 1000
	}
	return watts
}
