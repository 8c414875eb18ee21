// Package waybar renders telemetry snapshots into the JSON objects a
// Waybar custom module consumes on stdout.
package waybar

import (
	"encoding/json"
	"io"

	"gpubar/internal/format"
	"gpubar/internal/gpu"
)

// Output is one status update. Text and Tooltip are always serialized,
// even when empty, so Waybar never sees a stale tooltip. Class and
// Percentage are optional niceties: Class feeds CSS styling, Percentage
// the format-percentage directive.
type Output struct {
	Text       string `json:"text"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class,omitempty"`
	Percentage *uint8 `json:"percentage,omitempty"`
}

// Renderer turns snapshots into Outputs using the configured templates.
type Renderer struct {
	text    *format.Template
	tooltip *format.Template
}

func NewRenderer(text, tooltip *format.Template) *Renderer {
	return &Renderer{text: text, tooltip: tooltip}
}

// Render builds the update for one reading. A nil snapshot means the
// card is powered down (D3cold) and was deliberately not queried, since
// reading telemetry would wake it.
func (r *Renderer) Render(snap *gpu.Snapshot) Output {
	if snap == nil {
		return Output{Text: "Off", Tooltip: "GPU powered off", Class: "off"}
	}
	if !snap.Busy {
		return Output{Text: "Idle", Tooltip: "GPU idle", Class: "idle"}
	}
	return Output{
		Text:       r.text.Render(snap),
		Tooltip:    r.tooltip.Render(snap),
		Class:      "active",
		Percentage: snap.GPUUtil,
	}
}

// Writer emits one JSON object per line, the framing Waybar expects
// from a long-running exec module.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Write(out Output) error {
	return w.enc.Encode(out)
}
