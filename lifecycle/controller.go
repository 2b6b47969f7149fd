package lifecycle

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
	"github.com/sitrontech/mini-app-module-interface/navigation"
)

// State tracks the controller's position in its one-way lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateMounted
	StateDisposed // terminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateMounted:
		return "mounted"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// DependenciesChangedMsg is sent by the host when context the module depends
// on changes (theme, locale, refreshed snapshot).
type DependenciesChangedMsg struct {
	Config config.Snapshot
}

// UnmountMsg asks the controller to run its unmount sequence.
type UnmountMsg struct{}

// Controller wraps a Module as a Bubble Tea model and drives the mount
// protocol: channel initialize + module.ready on mount, onDispose +
// module.disposed + channel dispose on unmount, in that order. It also
// catches module build failures and swaps in a fallback error surface.
//
// Controller is used by pointer; the lifecycle state is not copyable.
type Controller struct {
	module  Module
	cfg     config.Snapshot
	ch      *channel.Channel
	handler channel.Handler
	scope   *navigation.Scope

	state       State
	failed      bool
	failText    string
	closeReason string // reason sent with the fallback's close request

	width  int
	height int
	back   key.Binding
}

// NewController wires a module to its host. handler may be nil: the module
// then runs standalone and every channel send is an observable no-op.
func NewController(m Module, cfg config.Snapshot, ch *channel.Channel, handler channel.Handler, scope *navigation.Scope) *Controller {
	return &Controller{
		module:  m,
		cfg:     cfg,
		ch:      ch,
		handler: handler,
		scope:   scope,
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "go back")),
	}
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State { return c.state }

// Failed reports whether the fallback error surface is active.
func (c *Controller) Failed() bool { return c.failed }

// Context returns the context handed to module hooks.
func (c *Controller) Context() *Context {
	return &Context{Config: c.cfg, Channel: c.ch, Scope: c.scope}
}

// Init implements tea.Model: it runs the mount sequence.
func (c *Controller) Init() tea.Cmd {
	return c.Mount()
}

// Mount opens the channel session, notifies the host the module is ready,
// and runs the module's init hook. Mounting twice is a no-op; a disposed
// controller never mounts again.
func (c *Controller) Mount() tea.Cmd {
	if c.state != StateUninitialized {
		return nil
	}
	c.state = StateMounted

	c.ch.Initialize(c.cfg.ModuleID, c.handler)

	if act, ok := c.module.(Activator); ok {
		if err := act.CheckActivation(c.cfg); err != nil {
			reason := err.Error()
			var na *NotActivatableError
			if errors.As(err, &na) {
				reason = na.Reason
			}
			c.failed = true
			c.failText = reason
			c.closeReason = "not_activatable"
			c.ch.Diagnostics().Record("err", "module not activatable: "+reason,
				map[string]any{"moduleId": c.cfg.ModuleID})
			return nil
		}
	}

	// ready must precede any module-originated event; standalone mode
	// drops it inside Send.
	c.ch.Send(channel.TypeModuleReady, map[string]any{"version": c.cfg.Version})

	if init, ok := c.module.(Initializer); ok {
		return init.OnInit(c.Context())
	}
	return nil
}

// Unmount runs the teardown sequence: dispose hook, then the disposed
// notification, then channel teardown. The host must learn of the disposal
// before the handler reference is cleared. Idempotent.
func (c *Controller) Unmount() {
	if c.state != StateMounted {
		return
	}
	c.state = StateDisposed

	if d, ok := c.module.(Disposer); ok {
		d.OnDispose()
	}
	c.ch.Send(channel.TypeModuleDisposed, nil)
	c.ch.Dispose()
}

// Update implements tea.Model. Host-driven lifecycle messages are handled
// here; everything else is forwarded to the module under panic protection.
func (c *Controller) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		// fall through to the module so it can re-layout

	case DependenciesChangedMsg:
		c.cfg = msg.Config
		if h, ok := c.module.(DependenciesChangedHandler); ok {
			h.OnDependenciesChanged(c.cfg)
		}
		return c, nil

	case UnmountMsg:
		c.Unmount()
		return c, nil

	case tea.KeyMsg:
		if c.failed {
			if key.Matches(msg, c.back) {
				c.ch.RequestClose(c.closeReason)
			}
			return c, nil
		}
	}

	if c.state != StateMounted || c.failed {
		return c, nil
	}

	next, cmd, failure := c.safeUpdate(msg)
	if failure != nil {
		c.buildFailure(failure)
		return c, nil
	}
	c.module = next
	return c, cmd
}

// View implements tea.Model. A panic in the module's view is recovered and
// replaced by the fallback surface. A panic while rendering the fallback
// itself is not caught and propagates.
func (c *Controller) View() string {
	if c.failed {
		return c.renderFallback()
	}
	out, failure := c.safeView()
	if failure != nil {
		c.buildFailure(failure)
		return c.renderFallback()
	}
	return out
}

// buildPanic carries a recovered module panic plus the stack captured at
// the recovery point.
type buildPanic struct {
	message string
	trace   string
}

// safeUpdate forwards msg to the module, converting a panic into a
// buildPanic.
func (c *Controller) safeUpdate(msg tea.Msg) (next Module, cmd tea.Cmd, failure *buildPanic) {
	defer func() {
		if rec := recover(); rec != nil {
			failure = &buildPanic{message: fmt.Sprint(rec), trace: string(debug.Stack())}
		}
	}()
	next, cmd = c.module.Update(msg)
	return next, cmd, nil
}

// safeView renders the module's content, converting a panic into a
// buildPanic.
func (c *Controller) safeView() (out string, failure *buildPanic) {
	defer func() {
		if rec := recover(); rec != nil {
			failure = &buildPanic{message: fmt.Sprint(rec), trace: string(debug.Stack())}
		}
	}()
	return c.module.View(c.width, c.height), nil
}

// buildFailure records a content-build failure, reports it to the host, and
// activates the fallback surface.
func (c *Controller) buildFailure(p *buildPanic) {
	c.failed = true
	c.failText = p.message
	c.closeReason = "build_failure"
	c.ch.ReportError(p.message, "module_build", p.trace)
}
