package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TheHostEagle/SO-FinalProyect/mem/pmm"
)

// Layout and pacing constants
const (
	tickInterval  = 250 * time.Millisecond
	maxEvents     = 200 // rolling event log length
	minOpsPerTick = 1
	maxOpsPerTick = 128
	headerHeight  = 9 // title + gauge + stats block above the event log
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the monitor's application model: a frame allocator under a
// synthetic workload, a pressure gauge, and a rolling event log.
type Model struct {
	alloc *pmm.Allocator
	drv   *driver
	keys  KeyMap

	events   []string
	viewport viewport.Model

	width      int
	height     int
	ready      bool
	paused     bool
	opsPerTick int

	// Status message for temporary feedback
	statusMessage string
}

// NewModel creates the monitor model over an already-seeded allocator.
func NewModel(alloc *pmm.Allocator, sharePct int) Model {
	return Model{
		alloc:      alloc,
		drv:        newDriver(alloc, sharePct, time.Now().UnixNano()),
		keys:       DefaultKeyMap(),
		opsPerTick: 8,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			m.statusMessage = ""
			return m, nil

		case key.Matches(msg, m.keys.Faster):
			if m.opsPerTick < maxOpsPerTick {
				m.opsPerTick *= 2
			}
			return m, nil

		case key.Matches(msg, m.keys.Slower):
			if m.opsPerTick > minOpsPerTick {
				m.opsPerTick /= 2
			}
			return m, nil

		case key.Matches(msg, m.keys.Copy):
			m.statusMessage = m.copyStats()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := msg.Height - headerHeight
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, logHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = logHeight
		}
		m.viewport.SetContent(strings.Join(m.events, "\n"))
		return m, nil

	case tickMsg:
		if !m.paused {
			for i := 0; i < m.opsPerTick; i++ {
				m.events = append(m.events, m.drv.step())
			}
			if len(m.events) > maxEvents {
				m.events = m.events[len(m.events)-maxEvents:]
			}
			if m.ready {
				m.viewport.SetContent(strings.Join(m.events, "\n"))
				m.viewport.GotoBottom()
			}
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "starting framemon..."
	}

	region := m.alloc.Region()
	free := m.alloc.FreeFrames()
	total := region.Frames()

	title := titleStyle.Render(fmt.Sprintf(" framemon — %d frames @ [%#x, %#x) ",
		total, uint64(region.Start()), uint64(region.Top())))
	if m.paused {
		title += " " + pausedStyle.Render("PAUSED")
	}

	gauge := m.renderGauge(free, total)

	s := m.alloc.Stats()
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statPair("free", fmt.Sprintf("%d/%d", free, total)),
		m.statPair("allocs", fmt.Sprintf("%d", s.AllocCalls)),
		m.statPair("failed", fmt.Sprintf("%d", s.FailedAllocs)),
		m.statPair("frees", fmt.Sprintf("%d", s.FreeCalls)),
		m.statPair("shares", fmt.Sprintf("%d", s.OwnerIncrements)),
		m.statPair("recycled", fmt.Sprintf("%d", s.Recycled)),
		m.statPair("ops/tick", fmt.Sprintf("%d", m.opsPerTick)),
	)

	status := ""
	if m.statusMessage != "" {
		status = statusStyle.Render(m.statusMessage)
	}

	help := helpStyle.Render("space pause · +/- speed · ↑/↓ scroll · c copy stats · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		gauge,
		stats,
		"",
		eventBoxStyle.Render(m.viewport.View()),
		status,
		help,
	)
}

// renderGauge draws the free-frame pressure bar.
func (m Model) renderGauge(free, total int) string {
	width := m.width - 12
	if width < 10 {
		width = 10
	}
	filled := 0
	if total > 0 {
		filled = free * width / total
	}

	fillStyle := gaugeFullStyle
	if total > 0 && free*100/total < 20 {
		fillStyle = gaugeLowStyle
	}
	bar := fillStyle.Render(strings.Repeat("█", filled)) +
		gaugeEmptyStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("  %s %3d%%", bar, percent(free, total))
}

func (m Model) statPair(label, value string) string {
	return statLabelStyle.Render("  "+label+" ") + statValueStyle.Render(value)
}

// copyStats places a JSON snapshot of the allocator state on the clipboard
// and returns the status line to display.
func (m Model) copyStats() string {
	snapshot := struct {
		FreeFrames int       `json:"freeFrames"`
		Frames     int       `json:"frames"`
		Stats      pmm.Stats `json:"stats"`
	}{
		FreeFrames: m.alloc.FreeFrames(),
		Frames:     m.alloc.Region().Frames(),
		Stats:      m.alloc.Stats(),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "copy failed: " + err.Error()
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return "copy failed: " + err.Error()
	}
	return "stats copied to clipboard"
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
