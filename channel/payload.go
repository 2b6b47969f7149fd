package channel

import "time"

// Typed views over the conventional payload shapes. The wire contract stays
// an open map so custom events remain possible; hosts that want static
// types decode known events through these structs.

// NavigationPayload is the shape of a navigation.request event.
type NavigationPayload struct {
	Route  string
	Params map[string]any
}

// ClosePayload is the shape of a module.close_request event.
type ClosePayload struct {
	Reason string
}

// LogoutPayload is the shape of an auth.logout_request event.
type LogoutPayload struct {
	Reason string
}

// ErrorPayload is the shape of an error.report event.
type ErrorPayload struct {
	Message string
	Context string
	Trace   string
}

// DataRequestPayload is the shape of a data.request event.
type DataRequestPayload struct {
	Kind   string
	Params map[string]any
}

// StatePayload is the shape of a state.changed event.
type StatePayload struct {
	State string
}

// Stamp carries the identity fields the channel adds to every payload.
type Stamp struct {
	ModuleID  string
	Timestamp time.Time
}

func str(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func dict(p map[string]any, key string) map[string]any {
	v, _ := p[key].(map[string]any)
	return v
}

// DecodeStamp extracts the module identity and timestamp the channel stamped
// onto a delivered payload. ok is false when the timestamp is missing or not
// RFC3339.
func DecodeStamp(p map[string]any) (Stamp, bool) {
	ts, err := time.Parse(time.RFC3339Nano, str(p, "timestamp"))
	if err != nil {
		return Stamp{}, false
	}
	return Stamp{ModuleID: str(p, "moduleId"), Timestamp: ts}, true
}

// AsNavigation decodes a navigation.request payload.
func AsNavigation(p map[string]any) NavigationPayload {
	return NavigationPayload{Route: str(p, "route"), Params: dict(p, "params")}
}

// AsClose decodes a module.close_request payload.
func AsClose(p map[string]any) ClosePayload {
	return ClosePayload{Reason: str(p, "reason")}
}

// AsLogout decodes an auth.logout_request payload.
func AsLogout(p map[string]any) LogoutPayload {
	return LogoutPayload{Reason: str(p, "reason")}
}

// AsError decodes an error.report payload.
func AsError(p map[string]any) ErrorPayload {
	return ErrorPayload{
		Message: str(p, "message"),
		Context: str(p, "context"),
		Trace:   str(p, "trace"),
	}
}

// AsDataRequest decodes a data.request payload.
func AsDataRequest(p map[string]any) DataRequestPayload {
	return DataRequestPayload{Kind: str(p, "kind"), Params: dict(p, "params")}
}

// AsState decodes a state.changed payload.
func AsState(p map[string]any) StatePayload {
	return StatePayload{State: str(p, "state")}
}
