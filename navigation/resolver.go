package navigation

import (
	"fmt"
	"strings"
	"time"

	"github.com/sitrontech/mini-app-module-interface/channel"
)

// MaxAncestorDepth bounds the fallback walk up the scope chain. The walk
// always terminates: it stops at this many hops, at a boundary scope, or at
// the chain's root, whichever comes first.
const MaxAncestorDepth = 10

// DefaultSource tags requests originating from a mini-app shortcut surface.
const DefaultSource = "mini_app_shortcut"

// Request is the UI-level navigation intent handed to the resolver.
type Request struct {
	ModuleID  string         `json:"moduleId"`
	Route     string         `json:"route,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

// ScopeInfo records what the walk saw at one ancestor, for the failure
// diagnostic.
type ScopeInfo struct {
	Name         string
	HasNavigator bool
	Boundary     bool
}

// Failure describes an unresolvable navigation attempt. It carries both the
// transient user-facing notice and the full diagnostic for the "show debug
// details" dialog.
type Failure struct {
	Target        string
	DepthSearched int
	Scopes        []ScopeInfo
	DelegateErr   error // set when a navigator was found but failed
}

// Notice is the short user-visible text naming the failed target.
func (f *Failure) Notice() string {
	return fmt.Sprintf("Unable to open %q", f.Target)
}

// Details renders the diagnostic for a blocking debug dialog.
func (f *Failure) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "navigation to %q failed\n", f.Target)
	fmt.Fprintf(&b, "ancestors searched: %d (bound %d)\n", f.DepthSearched, MaxAncestorDepth)
	if f.DelegateErr != nil {
		fmt.Fprintf(&b, "delegate error: %v\n", f.DelegateErr)
	}
	for i, s := range f.Scopes {
		fmt.Fprintf(&b, "  [%d] %s navigator=%v", i, s.Name, s.HasNavigator)
		if s.Boundary {
			b.WriteString(" (boundary)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Outcome is the resolver's result. Resolution never returns an error: a
// failed attempt degrades to a Failure the host surfaces as a notice.
type Outcome struct {
	OK      bool
	Request Request
	Via     string // scope that delegated
	Depth   int    // hops from the origin scope to Via
	Failure *Failure
}

// Resolver locates a Navigator through the scope chain and delegates to it.
type Resolver struct {
	// PreNavigate, when set, runs before resolution for analytics or state
	// hooks. Unlike delegation it is not panic-protected: a panic here is a
	// programming error in the host and propagates.
	PreNavigate func(Request)

	diag *channel.Diagnostics
	now  func() time.Time
}

// NewResolver builds a resolver recording failures to diag (may be nil).
func NewResolver(diag *channel.Diagnostics) *Resolver {
	return &Resolver{diag: diag, now: time.Now}
}

// Resolve walks the scope chain from scope, delegating to the first
// navigator found within MaxAncestorDepth hops. A navigator that panics or
// returns an error during delegation is treated the same as one that was
// never found: the attempt falls through to the failure path instead of
// crashing the host.
func (r *Resolver) Resolve(scope *Scope, req Request) Outcome {
	if req.Source == "" {
		req.Source = DefaultSource
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = r.clock()
	}

	if r.PreNavigate != nil {
		r.PreNavigate(req)
	}

	var seen []ScopeInfo
	depth := 0
	for s := scope; s != nil; s = s.parent {
		seen = append(seen, ScopeInfo{Name: s.name, HasNavigator: s.navigator != nil, Boundary: s.boundary})
		if s.navigator != nil {
			if err := delegate(s.navigator, req); err != nil {
				return r.fail(req, depth, seen, err)
			}
			return Outcome{OK: true, Request: req, Via: s.name, Depth: depth}
		}
		if s.boundary || depth >= MaxAncestorDepth {
			break
		}
		depth++
	}
	return r.fail(req, depth, seen, nil)
}

// delegate invokes the navigator, converting a panic into an error so a
// faulty host capability can never crash the module's UI loop.
func delegate(n Navigator, req Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigator panic: %v", rec)
		}
	}()
	return n.NavigateToModule(req.ModuleID, req.Extra)
}

func (r *Resolver) fail(req Request, depth int, seen []ScopeInfo, delegateErr error) Outcome {
	f := &Failure{
		Target:        req.ModuleID,
		DepthSearched: depth,
		Scopes:        seen,
		DelegateErr:   delegateErr,
	}
	fields := map[string]any{
		"target": req.ModuleID,
		"depth":  depth,
		"source": req.Source,
	}
	if delegateErr != nil {
		fields["delegateErr"] = delegateErr.Error()
	}
	// Keys are indexed: scope names may repeat along the chain.
	for i, s := range seen {
		fields[fmt.Sprintf("scope.%d.%s", i, s.Name)] = s.HasNavigator
	}
	r.diag.Record("nav", "navigation unresolved: "+req.ModuleID, fields)
	return Outcome{OK: false, Request: req, Depth: depth, Failure: f}
}

func (r *Resolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
