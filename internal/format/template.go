// Package format renders templated status strings from GPU telemetry.
//
// A template mixes literal text with placeholders of the form {field},
// {field:unit}, or {field:unit.precision}:
//
//	GPU: {gpu_utilization}%
//	MEM: {mem_used:GiB.1}/{mem_total:GiB.1} GiB
//	TEMP: {temperature:c}°C
//
// Unit-less fields are integer percentages plus the performance state
// and level. Quantity fields (mem_used, mem_total, tx, rx, temperature,
// power) require a unit; precision caps the decimal places, with
// trailing zeros trimmed. Missing values render as N/A.
package format

import (
	"regexp"
	"strings"

	"gpubar/internal/gpu"
)

var placeholderRe = regexp.MustCompile(`\{(\w+)(?::(\w+)(?:\.(\d+))?)?\}`)

type segment struct {
	literal string
	field   *Field
}

// Template is a parsed format string, ready to render repeatedly.
type Template struct {
	segments []segment
}

// Parse compiles a format string. Unknown field names parse fine (they
// render as N/A); malformed units or precisions are errors.
func Parse(formatStr string) (*Template, error) {
	var segments []segment
	last := 0

	for _, m := range placeholderRe.FindAllStringSubmatchIndex(formatStr, -1) {
		if m[0] > last {
			segments = append(segments, segment{literal: formatStr[last:m[0]]})
		}

		name := formatStr[m[2]:m[3]]
		var unit, precision string
		if m[4] >= 0 {
			unit = formatStr[m[4]:m[5]]
		}
		if m[6] >= 0 {
			precision = formatStr[m[6]:m[7]]
		}

		field, err := parseField(name, unit, precision)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment{field: &field})
		last = m[1]
	}

	if last < len(formatStr) {
		segments = append(segments, segment{literal: formatStr[last:]})
	}

	return &Template{segments: segments}, nil
}

// Render assembles the template against a snapshot.
func (t *Template) Render(snap *gpu.Snapshot) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.field == nil {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(seg.field.render(snap))
	}
	return b.String()
}

// Fields returns the parsed placeholders in template order.
func (t *Template) Fields() []Field {
	var fields []Field
	for _, seg := range t.segments {
		if seg.field != nil {
			fields = append(fields, *seg.field)
		}
	}
	return fields
}

// TrimUnavailableLines drops every line of a format string that
// references a field the snapshot has no value for. Lines without
// placeholders survive. Used on the default tooltip so a card that
// lacks, say, fan telemetry does not show a wall of N/A.
func TrimUnavailableLines(formatStr string, snap *gpu.Snapshot) (string, error) {
	lines := strings.Split(formatStr, "\n")
	kept := lines[:0]

	for _, line := range lines {
		tpl, err := Parse(line)
		if err != nil {
			return "", err
		}
		keep := true
		for _, f := range tpl.Fields() {
			if !f.available(snap) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n"), nil
}
