// Package lifecycle binds a mini-app module's mounted lifetime to its host
// channel: the controller initializes the channel on mount, tears it down on
// unmount, and shields the host from module-side build failures.
package lifecycle

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
	"github.com/sitrontech/mini-app-module-interface/navigation"
)

// Context is what a mounted module gets to work with: its activation
// snapshot, the channel back to the host, and the navigation scope it was
// mounted into.
type Context struct {
	Config  config.Snapshot
	Channel *channel.Channel
	Scope   *navigation.Scope
}

// Module is an independently built mini-app embeddable in a host shell.
// Update and View follow the host's message loop; a panic in either is
// recovered by the controller, reported to the host, and replaced by the
// fallback error surface.
type Module interface {
	ID() string
	Update(msg tea.Msg) (Module, tea.Cmd)
	View(width, height int) string
}

// Initializer is implemented by modules that want a hook right after the
// channel session opens.
type Initializer interface {
	OnInit(ctx *Context) tea.Cmd
}

// DependenciesChangedHandler is implemented by modules that react to
// host-driven context changes (theme, locale, refreshed tokens). The hook
// runs with no channel interaction.
type DependenciesChangedHandler interface {
	OnDependenciesChanged(cfg config.Snapshot)
}

// Disposer is implemented by modules that clean up on unmount. It runs
// before the module.disposed notification leaves for the host.
type Disposer interface {
	OnDispose()
}

// Activator is implemented by modules that may refuse to activate. A
// *NotActivatableError return makes the controller render the fallback
// surface instead of module content; any other error is treated the same
// with the error text as the reason.
type Activator interface {
	CheckActivation(cfg config.Snapshot) error
}

// NotActivatableError signals that a module cannot activate in the given
// context (missing auth, unsupported host version, and so on).
type NotActivatableError struct {
	Reason string
}

// Error implements the error interface.
func (e *NotActivatableError) Error() string {
	return fmt.Sprintf("module not activatable: %s", e.Reason)
}

// NotActivatable builds a refusal with the given reason.
func NotActivatable(reason string) *NotActivatableError {
	return &NotActivatableError{Reason: reason}
}
