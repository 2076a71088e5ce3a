// Package tui is the terminal dashboard: an asset selector, two date inputs
// and stacked sentiment and price plots driven by a dashboard.Controller.
package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"trendboard/internal/dashboard"
	"trendboard/internal/domain"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const dateLayout = domain.DayLayout

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	assetStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assetDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	emptyStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11"))
)

type focus int

const (
	focusNone focus = iota
	focusStart
	focusEnd
)

// snapshotMsg is produced when the controller applies a result. gen is the
// generation the snapshot belongs to.
type snapshotMsg struct {
	gen  uint64
	snap dashboard.Snapshot
}

type closedMsg struct{}

type Model struct {
	ctrl        *dashboard.Controller
	updates     <-chan struct{}
	unsubscribe func()

	startInput textinput.Model
	endInput   textinput.Model
	focus      focus

	snap    dashboard.Snapshot
	pending uint64
	err     string

	width  int
	height int
	title  string
}

// NewModel subscribes to ctrl. The caller owns ctrl and closes it after the
// program exits.
func NewModel(ctrl *dashboard.Controller, title string) Model {
	snap := ctrl.Snapshot()
	updates, unsubscribe := ctrl.Subscribe()

	start := textinput.New()
	start.Placeholder = dateLayout
	start.CharLimit = len(dateLayout)
	start.Width = len(dateLayout)
	start.Prompt = "from "
	start.SetValue(snap.Start.UTC().Format(dateLayout))

	end := textinput.New()
	end.Placeholder = dateLayout
	end.CharLimit = len(dateLayout)
	end.Width = len(dateLayout)
	end.Prompt = "to "
	end.SetValue(snap.End.UTC().Format(dateLayout))

	if title == "" {
		title = "trendboard"
	}
	return Model{
		ctrl:        ctrl,
		updates:     updates,
		unsubscribe: unsubscribe,
		startInput:  start,
		endInput:    end,
		snap:        snap,
		width:       80,
		height:      24,
		title:       title,
	}
}

func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func waitForSnapshot(ctrl *dashboard.Controller, updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return closedMsg{}
		}
		snap := ctrl.Snapshot()
		return snapshotMsg{gen: snap.Generation, snap: snap}
	}
}

func (m Model) Init() tea.Cmd {
	m.ctrl.Refresh()
	return waitForSnapshot(m.ctrl, m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.gen >= m.pending {
			m.snap = msg.snap
		}
		return m, waitForSnapshot(m.ctrl, m.updates)

	case closedMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.focus != focusNone {
			return m.updateInputs(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.unsubscribe()
			return m, tea.Quit
		case "left", "h":
			m.cycleAsset(-1)
		case "right", "l":
			m.cycleAsset(1)
		case "tab":
			m.setFocus(focusStart)
		case "shift+tab":
			m.setFocus(focusEnd)
		case "f", "r", "enter":
			m.err = ""
			m.pending = m.ctrl.Refresh()
			m.snap.Loading = true
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.unsubscribe()
		return m, tea.Quit
	case "esc":
		m.setFocus(focusNone)
		return m, nil
	case "tab":
		if m.focus == focusStart {
			m.setFocus(focusEnd)
		} else {
			m.setFocus(focusNone)
		}
		return m, nil
	case "shift+tab":
		if m.focus == focusEnd {
			m.setFocus(focusStart)
		} else {
			m.setFocus(focusNone)
		}
		return m, nil
	case "enter":
		if err := m.applyRange(); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.setFocus(focusNone)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusStart {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.startInput.Blur()
	m.endInput.Blur()
	switch f {
	case focusStart:
		m.startInput.Focus()
	case focusEnd:
		m.endInput.Focus()
	}
}

func (m *Model) cycleAsset(delta int) {
	assets := domain.SupportedAssets
	idx := 0
	for i, a := range assets {
		if a == m.snap.Asset {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(assets)) % len(assets)
	gen, err := m.ctrl.SetAsset(assets[idx])
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.pending = gen
	m.snap.Asset = assets[idx]
	m.snap.Loading = true
}

// applyRange reads both inputs as UTC days; the end day is included in full.
func (m *Model) applyRange() error {
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(m.startInput.Value()), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date, want %s", dateLayout)
	}
	endDay, err := time.ParseInLocation(dateLayout, strings.TrimSpace(m.endInput.Value()), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date, want %s", dateLayout)
	}
	end := endDay.Add(24*time.Hour - time.Second)
	gen, err := m.ctrl.SetRange(start, end)
	if errors.Is(err, dashboard.ErrInvertedRange) {
		return errors.New("start date is after end date")
	}
	if err != nil {
		return err
	}
	m.pending = gen
	m.snap.Start, m.snap.End = start, end
	m.snap.Loading = true
	return nil
}

func (m Model) View() string {
	var b strings.Builder

	status := ""
	if m.snap.Loading {
		status = "  loading..."
	}
	header := fmt.Sprintf(" %s  %s  %s .. %s%s ",
		m.title, m.snap.Asset.Name(),
		m.snap.Start.UTC().Format(dateLayout), m.snap.End.UTC().Format(dateLayout), status)
	b.WriteString(headerStyle.Render(padOrTrunc(header, m.width)))
	b.WriteString("\n\n")

	b.WriteString(" ")
	for i, a := range domain.SupportedAssets {
		if i > 0 {
			b.WriteString("  ")
		}
		if a == m.snap.Asset {
			b.WriteString(assetStyle.Render("[" + a.Name() + "]"))
		} else {
			b.WriteString(assetDimStyle.Render(a.Name()))
		}
	}
	b.WriteString("\n ")
	b.WriteString(m.startInput.View())
	b.WriteString("   ")
	b.WriteString(m.endInput.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(" " + errStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderChart())

	footer := " q quit  left/right asset  tab dates  enter apply  f fetch"
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(padOrTrunc(footer, m.width)))
	return b.String()
}

func (m Model) renderChart() string {
	chart := m.snap.Chart
	if chart.Empty {
		if m.snap.Loading {
			return " " + labelStyle.Render("fetching...") + "\n"
		}
		return " " + emptyStyle.Render(chart.Message) + "\n"
	}

	plotWidth := m.width - 12
	if plotWidth < 20 {
		plotWidth = 20
	}
	plotHeight := (m.height - 14) / 2
	if plotHeight < 4 {
		plotHeight = 4
	}

	var b strings.Builder
	if vals, ok := plotValues(chart.Sentiment); ok {
		b.WriteString(asciigraph.Plot(vals,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Precision(2),
			asciigraph.Caption("sentiment (compound)"),
		))
	} else {
		b.WriteString(" " + labelStyle.Render("no sentiment data"))
	}
	b.WriteString("\n\n")
	if vals, ok := plotValues(chart.Price); ok {
		b.WriteString(asciigraph.Plot(vals,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Precision(2),
			asciigraph.Caption("price (USD)"),
		))
	} else {
		b.WriteString(" " + labelStyle.Render("no price data"))
	}
	b.WriteString("\n")
	if n := len(chart.Labels); n > 0 {
		b.WriteString(" " + labelStyle.Render(fmt.Sprintf("%s .. %s (%d days)", chart.Labels[0], chart.Labels[n-1], n)))
		b.WriteString("\n")
	}
	return b.String()
}

// plotValues maps gaps to NaN, which the plotter skips. It reports false
// when the series has no values at all.
func plotValues(series []*float64) ([]float64, bool) {
	out := make([]float64, len(series))
	has := false
	for i, v := range series {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
		has = true
	}
	return out, has
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
