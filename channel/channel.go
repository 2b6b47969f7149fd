// Package channel delivers module-originated notifications to the host.
// Delivery is at-most-once and best-effort: a send on an uninitialized or
// handlerless channel is dropped with a diagnostic, never an error, and a
// delivered event is handed to the host synchronously in the caller's stack
// with no queueing, retry, or acknowledgement.
package channel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types delivered to the host handler. These strings are the wire
// vocabulary and are stable across versions; SendCustom may use any other
// string.
const (
	TypeNavigationRequest = "navigation.request"
	TypeCloseRequest      = "module.close_request"
	TypeLogoutRequest     = "auth.logout_request"
	TypeErrorReport       = "error.report"
	TypeDataRequest       = "data.request"
	TypeStateChanged      = "state.changed"
	TypeModuleReady       = "module.ready"
	TypeModuleDisposed    = "module.disposed"
)

// Handler receives module events on the host side. It is invoked
// synchronously on the sender's goroutine.
type Handler func(eventType string, payload map[string]any)

// Event is the envelope built for every delivered notification. Events are
// fire-and-forget; the channel never persists them.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ModuleID  string         `json:"moduleId"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Channel is one module/host session. It holds at most one active session:
// initializing while a session is active silently replaces it
// (last-writer-wins). Hosts mounting modules concurrently give each its own
// Channel.
//
// All methods assume the single-threaded UI goroutine; there is no lock.
type Channel struct {
	handler     Handler
	moduleID    string
	initialized bool
	lastStamp   time.Time
	diag        *Diagnostics

	// now is the event clock, injectable for tests.
	now func() time.Time
}

// New creates an uninitialized channel recording diagnostics to diag.
// A nil diag keeps the channel silent but functional.
func New(diag *Diagnostics) *Channel {
	return &Channel{diag: diag, now: time.Now}
}

// Initialize opens a session for moduleID. A nil handler puts the module in
// standalone mode: every send becomes an observable no-op. Calling
// Initialize on an active channel replaces the session without warning;
// the replacement is recorded as a diagnostic.
func (c *Channel) Initialize(moduleID string, handler Handler) {
	if c.initialized {
		c.diag.Record("session", fmt.Sprintf("session %q replaced by %q", c.moduleID, moduleID),
			map[string]any{"prev": c.moduleID, "next": moduleID})
	}
	c.handler = handler
	c.moduleID = moduleID
	c.initialized = true
	c.lastStamp = time.Time{}
}

// Dispose clears the session. Safe to call any number of times; after the
// first call every send is a no-op. Each Initialize should be paired with a
// Dispose so a stale handler cannot leak into a later session.
func (c *Channel) Dispose() {
	c.handler = nil
	c.moduleID = ""
	c.initialized = false
}

// Initialized reports whether a session is open.
func (c *Channel) Initialized() bool { return c.initialized }

// Standalone reports whether the session has no host handler, meaning every
// send is dropped.
func (c *Channel) Standalone() bool { return c.initialized && c.handler == nil }

// ModuleID returns the active session's module identity, or "".
func (c *Channel) ModuleID() string { return c.moduleID }

// Diagnostics returns the channel's recorder (may be nil).
func (c *Channel) Diagnostics() *Diagnostics { return c.diag }

// Send delivers an event of the given type. It reports whether the event
// reached a handler; a false return means the event was dropped (channel
// uninitialized or standalone) and a diagnostic recorded. Send never returns
// an error: a drop is silent apart from the diagnostic.
func (c *Channel) Send(eventType string, data map[string]any) bool {
	if !c.initialized {
		c.diag.Record("drop", "send on uninitialized channel: "+eventType,
			map[string]any{"eventType": eventType})
		return false
	}
	if c.handler == nil {
		c.diag.Record("drop", "send in standalone mode: "+eventType,
			map[string]any{"eventType": eventType, "moduleId": c.moduleID})
		return false
	}

	ev := c.stamp(eventType, data)
	payload := make(map[string]any, len(ev.Payload)+2)
	for k, v := range ev.Payload {
		payload[k] = v
	}
	payload["moduleId"] = ev.ModuleID
	payload["timestamp"] = ev.Timestamp.Format(time.RFC3339Nano)

	c.handler(eventType, payload)
	c.diag.Record("send", eventType, map[string]any{"moduleId": c.moduleID, "eventId": ev.ID})
	return true
}

// stamp builds the event envelope. Timestamps are clamped to be
// monotonically non-decreasing within a session even if the wall clock
// steps backwards.
func (c *Channel) stamp(eventType string, data map[string]any) Event {
	ts := c.now()
	if ts.Before(c.lastStamp) {
		ts = c.lastStamp
	}
	c.lastStamp = ts
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ModuleID:  c.moduleID,
		Payload:   data,
		Timestamp: ts,
	}
}

// RequestNavigation asks the host to open another module or route.
func (c *Channel) RequestNavigation(route string, params map[string]any) bool {
	data := map[string]any{"route": route}
	if len(params) > 0 {
		data["params"] = params
	}
	return c.Send(TypeNavigationRequest, data)
}

// RequestClose asks the host to unmount this module.
func (c *Channel) RequestClose(reason string) bool {
	data := map[string]any{}
	if reason != "" {
		data["reason"] = reason
	}
	return c.Send(TypeCloseRequest, data)
}

// RequestLogout asks the host to end the authenticated session.
func (c *Channel) RequestLogout(reason string) bool {
	data := map[string]any{}
	if reason != "" {
		data["reason"] = reason
	}
	return c.Send(TypeLogoutRequest, data)
}

// ReportError forwards a module-side failure to the host. context names the
// phase that failed (e.g. "module_build"); trace carries a stack if one was
// captured.
func (c *Channel) ReportError(message, context, trace string) bool {
	data := map[string]any{"message": message}
	if context != "" {
		data["context"] = context
	}
	if trace != "" {
		data["trace"] = trace
	}
	return c.Send(TypeErrorReport, data)
}

// RequestData asks the host for a named kind of data.
func (c *Channel) RequestData(kind string, params map[string]any) bool {
	data := map[string]any{"kind": kind}
	if len(params) > 0 {
		data["params"] = params
	}
	return c.Send(TypeDataRequest, data)
}

// NotifyStateChange tells the host the module's observable state changed.
func (c *Channel) NotifyStateChange(state string) bool {
	return c.Send(TypeStateChanged, map[string]any{"state": state})
}

// SendCustom delivers an event outside the fixed vocabulary.
func (c *Channel) SendCustom(eventType string, data map[string]any) bool {
	return c.Send(eventType, data)
}
