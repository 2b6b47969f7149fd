// Package navigation resolves a module's "open module X" intent against a
// host-supplied navigation capability. The capability is injected through an
// explicit parent-linked scope chain rather than discovered by searching a
// widget tree; the bounded ancestor walk survives as a tested compatibility
// policy for hosts that only install a navigator near the root.
package navigation

// Navigator is the host-provided navigation capability.
type Navigator interface {
	NavigateToModule(moduleID string, data map[string]any) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(moduleID string, data map[string]any) error

// NavigateToModule implements Navigator.
func (f NavigatorFunc) NavigateToModule(moduleID string, data map[string]any) error {
	return f(moduleID, data)
}

// Scope is one level of the capability-provider hierarchy. A scope may carry
// a navigator; resolution starts at the module's own scope and walks parent
// links. A boundary scope ends the walk: its parent edge is never crossed,
// so a module cannot reach capabilities outside its enclosing navigation
// scope.
type Scope struct {
	name      string
	navigator Navigator
	parent    *Scope
	boundary  bool
}

// NewScope creates a scope under parent (nil for a root scope).
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{name: name, parent: parent}
}

// WithNavigator installs the navigation capability on this scope and
// returns the scope for chaining.
func (s *Scope) WithNavigator(n Navigator) *Scope {
	s.navigator = n
	return s
}

// AsBoundary marks this scope as the edge of the navigation scope: the walk
// stops here even if the depth bound is not yet reached.
func (s *Scope) AsBoundary() *Scope {
	s.boundary = true
	return s
}

// Name returns the scope's label, used in diagnostics.
func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// HasNavigator reports whether this scope itself carries the capability.
func (s *Scope) HasNavigator() bool {
	return s != nil && s.navigator != nil
}
