// Package notice renders the transient toast shown when a navigation
// attempt cannot be resolved. The toast slides in on a spring and expires on
// its own; the animation is view cosmetics only and carries no protocol
// state.
package notice

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"

	"github.com/sitrontech/mini-app-module-interface/theme"
)

const (
	fps         = 30
	slideOffset = 24.0 // columns the toast starts right of its rest position
	visibleFor  = 3 * time.Second
	springFreq  = 7.0
	springDamp  = 0.9
	settledTol  = 0.05
)

// FrameMsg advances the slide animation.
type FrameMsg time.Time

// ExpireMsg hides the toast.
type ExpireMsg struct{}

// Model holds toast state.
type Model struct {
	Width int

	text    string
	visible bool

	spring harmonica.Spring
	pos    float64
	vel    float64
}

// New creates a hidden toast.
func New() Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFreq, springDamp),
	}
}

// Visible reports whether the toast is on screen.
func (m Model) Visible() bool { return m.visible }

// Text returns the current toast text.
func (m Model) Text() string { return m.text }

// Show displays text and returns the commands driving the slide-in and the
// expiry timer.
func (m *Model) Show(text string) tea.Cmd {
	m.text = text
	m.visible = true
	m.pos = slideOffset
	m.vel = 0
	return tea.Batch(frame(), expire())
}

// Update advances animation and expiry.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg.(type) {
	case FrameMsg:
		if !m.visible {
			return m, nil
		}
		m.pos, m.vel = m.spring.Update(m.pos, m.vel, 0)
		if m.pos < settledTol && m.vel < settledTol {
			m.pos = 0
			return m, nil // settled, stop ticking
		}
		return m, frame()

	case ExpireMsg:
		m.visible = false
		m.text = ""
		return m, nil
	}
	return m, nil
}

// View renders the toast, indented by the spring's current offset.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	indent := int(m.pos)
	if indent < 0 {
		indent = 0
	}
	body := theme.StyleNotice.Render("⚠ " + m.text + "  " + theme.StyleDimmed.Render("D: details"))
	return strings.Repeat(" ", indent) + body
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func expire() tea.Cmd {
	return tea.Tick(visibleFor, func(time.Time) tea.Msg { return ExpireMsg{} })
}
