// Package tui implements the interactive dashboard behind `gpubar top`.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gpubar/internal/drm"
	"gpubar/internal/gpu"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(6)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const defaultBarWidth = 40

type tickMsg time.Time

type snapshotMsg struct {
	snap *gpu.Snapshot
	err  error
}

// Model polls the backend on a ticker and renders the latest snapshot.
type Model struct {
	card     drm.Card
	backend  gpu.Backend
	interval time.Duration

	snap *gpu.Snapshot
	err  error

	gpuBar progress.Model
	memBar progress.Model
	fanBar progress.Model
}

func New(card drm.Card, backend gpu.Backend, interval time.Duration) Model {
	newBar := func() progress.Model {
		bar := progress.New(progress.WithDefaultGradient())
		bar.Width = defaultBarWidth
		return bar
	}
	return Model{
		card:     card,
		backend:  backend,
		interval: interval,
		gpuBar:   newBar(),
		memBar:   newBar(),
		fanBar:   newBar(),
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(card drm.Card, backend gpu.Backend, interval time.Duration) error {
	_, err := tea.NewProgram(New(card, backend, interval), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.query, m.tick())
}

func (m Model) query() tea.Msg {
	snap, err := m.backend.Snapshot()
	return snapshotMsg{snap: snap, err: err}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := msg.Width - 16
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		m.gpuBar.Width = width
		m.memBar.Width = width
		m.fanBar.Width = width

	case tickMsg:
		return m, tea.Batch(m.query, m.tick())

	case snapshotMsg:
		m.snap = msg.snap
		m.err = msg.err
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s — %s", m.card.Model(), m.card.Vendor)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("query failed: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if m.snap == nil {
		b.WriteString(dimStyle.Render("waiting for first reading..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.gaugeRow("GPU", m.gpuBar, m.snap.GPUUtil))
	b.WriteString(m.memRow())
	b.WriteString(m.gaugeRow("FAN", m.fanBar, m.snap.FanSpeed))
	b.WriteString("\n")
	b.WriteString(m.statsRow())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) gaugeRow(label string, bar progress.Model, pct *uint8) string {
	if pct == nil {
		return labelStyle.Render(label) + dimStyle.Render("n/a") + "\n"
	}
	return fmt.Sprintf("%s%s %3d%%\n", labelStyle.Render(label), bar.ViewAs(float64(*pct)/100), *pct)
}

func (m Model) memRow() string {
	pct := m.snap.MemUtil()
	row := m.gaugeRow("MEM", m.memBar, pct)
	if m.snap.MemUsed != nil && m.snap.MemTotal != nil {
		detail := fmt.Sprintf("      %d / %d MiB", *m.snap.MemUsed>>20, *m.snap.MemTotal>>20)
		row += dimStyle.Render(detail) + "\n"
	}
	return row
}

// statsRow renders the scalar stats that don't warrant a gauge.
func (m Model) statsRow() string {
	var parts []string
	if m.snap.Temperature != nil {
		parts = append(parts, fmt.Sprintf("TEMP %.0f°C", *m.snap.Temperature))
	}
	if m.snap.Power != nil {
		parts = append(parts, fmt.Sprintf("POWER %.1f W", *m.snap.Power))
	}
	if m.snap.PState != nil {
		parts = append(parts, fmt.Sprintf("PSTATE P%d", *m.snap.PState))
	}
	if m.snap.PLevel != nil {
		parts = append(parts, "PLEVEL "+*m.snap.PLevel)
	}
	if m.snap.MemRW != nil {
		parts = append(parts, fmt.Sprintf("MEM R/W %d%%", *m.snap.MemRW))
	}
	if len(parts) == 0 {
		return dimStyle.Render("no scalar telemetry")
	}
	return strings.Join(parts, dimStyle.Render("  ·  "))
}
