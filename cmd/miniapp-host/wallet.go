package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sitrontech/mini-app-module-interface/config"
	"github.com/sitrontech/mini-app-module-interface/lifecycle"
	"github.com/sitrontech/mini-app-module-interface/theme"
)

const walletHelp = `# Wallet

A sample mini-app running inside the host shell.

- **o**: open the *payments* mini-app (resolved through the scope chain)
- **x**: open a module no navigator knows (fails, shows the notice)
- **s**: notify a state change
- **l**: request logout
- **c**: request close
- **p**: panic inside the module (the shell survives)
`

// navigateMsg is emitted by the wallet when the user triggers a shortcut;
// the shell resolves it against the scope chain.
type navigateMsg struct {
	moduleID string
	route    string
}

// walletModule is the demo mini-app. It exercises every hook the lifecycle
// controller offers.
type walletModule struct {
	ctx     *lifecycle.Context
	balance int
	state   string
	help    string
	explode bool
	debug   bool
}

func newWalletModule() *walletModule {
	rendered, err := glamour.Render(walletHelp, "dark")
	if err != nil {
		rendered = walletHelp
	}
	return &walletModule{balance: 4200, state: "idle", help: rendered}
}

// ID implements lifecycle.Module.
func (w *walletModule) ID() string { return "wallet" }

// CheckActivation refuses to run without an authenticated user.
func (w *walletModule) CheckActivation(cfg config.Snapshot) error {
	if !cfg.Authenticated() {
		return lifecycle.NotActivatable("wallet requires an authenticated user")
	}
	return nil
}

// OnInit stores the module context and announces the initial state.
func (w *walletModule) OnInit(ctx *lifecycle.Context) tea.Cmd {
	w.ctx = ctx
	w.debug = ctx.Config.DebugMode
	ctx.Channel.NotifyStateChange(w.state)
	return nil
}

// OnDependenciesChanged picks up refreshed config.
func (w *walletModule) OnDependenciesChanged(cfg config.Snapshot) {
	w.debug = cfg.DebugMode
}

// OnDispose is the module's last word before module.disposed goes out.
func (w *walletModule) OnDispose() {
	w.state = "disposed"
}

// Update implements lifecycle.Module.
func (w *walletModule) Update(msg tea.Msg) (lifecycle.Module, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "o":
			return w, func() tea.Msg { return navigateMsg{moduleID: "payments", route: "/send"} }
		case "x":
			return w, func() tea.Msg { return navigateMsg{moduleID: "ghost-module"} }
		case "s":
			w.state = "busy"
			w.ctx.Channel.NotifyStateChange(w.state)
			return w, nil
		case "l":
			w.ctx.Channel.RequestLogout("user_action")
			return w, nil
		case "c":
			w.ctx.Channel.RequestClose("user_action")
			return w, nil
		case "p":
			w.explode = true
			return w, nil
		}
	}
	return w, nil
}

// View implements lifecycle.Module.
func (w *walletModule) View(width, height int) string {
	if w.explode {
		panic("wallet: simulated content build failure")
	}

	header := theme.StyleHeader.Render(fmt.Sprintf(" Wallet | balance %d | state %s ", w.balance, w.state))
	body := lipgloss.JoinVertical(lipgloss.Left, header, w.help)
	if w.debug {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			theme.StyleDimmed.Render(fmt.Sprintf("  debug: route=%s version=%s", w.ctx.Config.InitialRoute, w.ctx.Config.Version)))
	}

	innerW := width - 4
	if innerW < 40 {
		innerW = 40
	}
	return theme.StyleBorder.Width(innerW).Render(body)
}
