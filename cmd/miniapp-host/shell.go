package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
	"github.com/sitrontech/mini-app-module-interface/lifecycle"
	"github.com/sitrontech/mini-app-module-interface/navigation"
	"github.com/sitrontech/mini-app-module-interface/remote"
	"github.com/sitrontech/mini-app-module-interface/theme"
	"github.com/sitrontech/mini-app-module-interface/views/debugpanel"
	"github.com/sitrontech/mini-app-module-interface/views/notice"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
)

// hostEvent is one entry in the shell's received-event pane.
type hostEvent struct {
	at        time.Time
	eventType string
	summary   string
}

// hostLog collects events as the channel delivers them. The handler closure
// and the shell model share it by pointer because Bubble Tea models are
// values.
type hostLog struct {
	events    []hostEvent
	wantClose bool
}

func (h *hostLog) handler(eventType string, payload map[string]any) {
	summary := ""
	switch eventType {
	case channel.TypeNavigationRequest:
		p := channel.AsNavigation(payload)
		summary = "route " + p.Route
	case channel.TypeCloseRequest:
		h.wantClose = true
		summary = "reason " + channel.AsClose(payload).Reason
	case channel.TypeLogoutRequest:
		summary = "reason " + channel.AsLogout(payload).Reason
	case channel.TypeErrorReport:
		summary = channel.AsError(payload).Message
	case channel.TypeStateChanged:
		summary = "state " + channel.AsState(payload).State
	}
	h.events = append(h.events, hostEvent{at: time.Now(), eventType: eventType, summary: summary})
}

// KeyMap defines the shell's own bindings; everything else goes to the
// mounted module.
type KeyMap struct {
	Quit    key.Binding
	Debug   key.Binding
	Details key.Binding
	Escape  key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// DefaultKeyMap returns the default shell bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Debug:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debug details")),
		Details: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "failure details")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close overlay")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "push config update")),
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll")),
	}
}

// Shell is the host application model embedding one mini-app module.
type Shell struct {
	controller  *lifecycle.Controller
	ch          *channel.Channel
	diag        *channel.Diagnostics
	resolver    *navigation.Resolver
	moduleScope *navigation.Scope
	log         *hostLog
	cfg         config.Snapshot

	link    *remote.HostLink // nil when the host runs in-process only
	linkCtx context.Context

	keys        KeyMap
	overlay     Overlay
	debug       debugpanel.Model
	notice      notice.Model
	lastFailure *navigation.Failure

	width  int
	height int
}

// newShell wires the demo host around a module. link may be nil; when set,
// the shell mirrors the module's event stream to the out-of-process host.
func newShell(ctrl *lifecycle.Controller, ch *channel.Channel, diag *channel.Diagnostics,
	resolver *navigation.Resolver, moduleScope *navigation.Scope, log *hostLog,
	cfg config.Snapshot, link *remote.HostLink) Shell {
	return Shell{
		controller:  ctrl,
		ch:          ch,
		diag:        diag,
		resolver:    resolver,
		moduleScope: moduleScope,
		log:         log,
		cfg:         cfg,
		link:        link,
		linkCtx:     context.Background(),
		keys:        DefaultKeyMap(),
		notice:      notice.New(),
	}
}

// Init mounts the module and, when remote, brings the host link up.
func (s Shell) Init() tea.Cmd {
	if s.link != nil {
		return tea.Batch(s.controller.Init(), s.link.Listen(s.linkCtx))
	}
	return s.controller.Init()
}

// Update handles shell messages and forwards the rest to the controller.
func (s Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.notice.Width = msg.Width
		_, cmd := s.controller.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)

	case navigateMsg:
		outcome := s.resolver.Resolve(s.moduleScope, navigation.Request{
			ModuleID: msg.moduleID,
			Route:    msg.route,
		})
		if !outcome.OK {
			s.lastFailure = outcome.Failure
			cmd := s.notice.Show(outcome.Failure.Notice())
			return s, cmd
		}
		return s, nil

	case notice.FrameMsg, notice.ExpireMsg:
		var cmd tea.Cmd
		s.notice, cmd = s.notice.Update(msg)
		return s, cmd

	case remote.ConnectedMsg:
		return s, s.link.ReadLoop(s.linkCtx)

	case remote.DisconnectedMsg:
		return s, s.link.Listen(s.linkCtx)

	case remote.ConfigUpdateMsg:
		s.cfg = msg.Config
		_, cmd := s.controller.Update(lifecycle.DependenciesChangedMsg{Config: msg.Config})
		return s, tea.Batch(cmd, s.link.ReadLoop(s.linkCtx))

	case remote.UnmountRequestMsg:
		return s.quit()

	case remote.DataResponseMsg, remote.HostErrorMsg:
		_, cmd := s.controller.Update(msg)
		return s, tea.Batch(cmd, s.link.ReadLoop(s.linkCtx))
	}

	_, cmd := s.controller.Update(msg)
	if s.log.wantClose {
		return s.quit()
	}
	return s, cmd
}

// quit unmounts the module, closes any host link, and exits.
func (s Shell) quit() (tea.Model, tea.Cmd) {
	s.controller.Unmount()
	if s.link != nil {
		s.link.Close()
	}
	return s, tea.Quit
}

func (s Shell) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if s.overlay == OverlayDebug {
		switch {
		case key.Matches(msg, s.keys.Escape):
			s.overlay = OverlayNone
			return s, nil
		case key.Matches(msg, s.keys.Up):
			s.debug.ScrollUp(1)
			return s, nil
		case key.Matches(msg, s.keys.Down):
			s.debug.ScrollDown(1)
			return s, nil
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, s.keys.Quit):
		return s.quit()

	case key.Matches(msg, s.keys.Debug):
		s.debug = debugpanel.New(s.diag.Entries())
		s.overlay = OverlayDebug
		return s, nil

	case key.Matches(msg, s.keys.Details):
		s.debug = debugpanel.New(s.diag.Entries())
		if s.lastFailure != nil {
			s.debug = s.debug.WithDetails(s.lastFailure.Details())
		}
		s.overlay = OverlayDebug
		return s, nil

	case key.Matches(msg, s.keys.Refresh):
		s.cfg = s.cfg.WithUpdatedMetadata(map[string]any{
			"refreshedAt": time.Now().Format(time.RFC3339),
		})
		_, cmd := s.controller.Update(lifecycle.DependenciesChangedMsg{Config: s.cfg})
		return s, cmd
	}

	_, cmd := s.controller.Update(msg)
	if s.log.wantClose {
		return s.quit()
	}
	return s, cmd
}

// View renders the shell chrome, the module surface, and any overlay.
func (s Shell) View() string {
	if s.width == 0 || s.height == 0 {
		return "Initializing..."
	}
	if s.overlay == OverlayDebug {
		return s.debug.View(s.width, s.height)
	}

	sections := []string{
		s.renderStatusBar(),
		s.controller.View(),
		s.renderEventPane(),
	}
	if s.notice.Visible() {
		sections = append(sections, s.notice.View())
	}
	sections = append(sections,
		theme.StyleDimmed.Render("  q:quit  d:debug  D:failure details  r:config update"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s Shell) renderStatusBar() string {
	state := s.controller.State().String()
	color := theme.ColorOK
	if s.controller.Failed() {
		state = "failed"
		color = theme.ColorDanger
	}
	stateStr := lipgloss.NewStyle().Foreground(color).Render("● " + state)
	id := theme.StyleHeader.Render(s.cfg.ModuleID + " v" + s.cfg.Version)
	sep := theme.StyleDimmed.Render(" | ")
	return theme.StyleBorder.Width(s.width-2).Padding(0, 1).Render(id + sep + stateStr)
}

func (s Shell) renderEventPane() string {
	n := len(s.log.events)
	start := n - 5
	if start < 0 {
		start = 0
	}
	lines := []string{theme.StyleHeader.Render(" HOST EVENTS ")}
	for _, e := range s.log.events[start:] {
		ts := theme.StyleDimmed.Render(e.at.Format("15:04:05"))
		lines = append(lines, fmt.Sprintf("  %s  %-24s %s", ts, e.eventType, theme.StyleDimmed.Render(e.summary)))
	}
	if n == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  none yet"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
