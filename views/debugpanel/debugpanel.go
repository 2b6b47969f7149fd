// Package debugpanel provides the blocking "show debug details" dialog. It
// replays the channel's diagnostic ring and, when opened from a navigation
// failure notice, pins the failure's full diagnostic at the top.
package debugpanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/theme"
)

// Model holds dialog state.
type Model struct {
	Entries []channel.DiagEntry
	Details string // pinned diagnostic text, e.g. a navigation failure report
	Offset  int    // scroll offset from the bottom of the ring
}

// New creates a dialog over a diagnostics snapshot.
func New(entries []channel.DiagEntry) Model {
	return Model{Entries: entries}
}

// WithDetails pins a diagnostic report above the ring.
func (m Model) WithDetails(details string) Model {
	m.Details = details
	return m
}

// ScrollUp moves the viewport toward older entries.
func (m *Model) ScrollUp(n int) {
	m.Offset += n
	max := len(m.Entries) - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

// ScrollDown moves the viewport toward newer entries.
func (m *Model) ScrollDown(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the dialog as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visibleLines := height - 8
	if visibleLines < 3 {
		visibleLines = 3
	}

	title := theme.StyleHeader.Render(" DEBUG DETAILS ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	var sections []string
	sections = append(sections, title)

	if m.Details != "" {
		sections = append(sections, theme.StyleError.Render(strings.TrimRight(m.Details, "\n")), "")
	}

	if len(m.Entries) == 0 {
		sections = append(sections, theme.StyleDimmed.Render("  No diagnostics recorded yet."))
	} else {
		end := len(m.Entries) - m.Offset
		start := end - visibleLines
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}

		var lines []string
		for i := start; i < end; i++ {
			e := m.Entries[i]
			tsStr := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
			kindStr := lipgloss.NewStyle().Foreground(theme.KindColor(e.Kind)).Width(8).Render(e.Kind)
			msgStr := e.Message
			if cut := innerW - 27; cut >= 1 && len(msgStr) > cut+3 {
				msgStr = msgStr[:cut] + "..."
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", tsStr, kindStr, msgStr))
		}
		sections = append(sections, strings.Join(lines, "\n"))

		if m.Offset > 0 {
			sections = append(sections, theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset)))
		}
	}

	sections = append(sections, "", help)
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return panelStyle(innerW).Render(content)
}
