package channel

import (
	"testing"
	"time"
)

// recorder captures what a host handler receives.
type recorder struct {
	types    []string
	payloads []map[string]any
}

func (r *recorder) handler(eventType string, payload map[string]any) {
	r.types = append(r.types, eventType)
	r.payloads = append(r.payloads, payload)
}

func TestSendUninitializedDropsWithoutPanic(t *testing.T) {
	c := New(NewDiagnostics(nil))
	if c.Send(TypeStateChanged, map[string]any{"state": "x"}) {
		t.Fatal("send on uninitialized channel should report dropped")
	}
	entries := c.Diagnostics().Entries()
	if len(entries) != 1 || entries[0].Kind != "drop" {
		t.Fatalf("expected one drop diagnostic, got %+v", entries)
	}
}

func TestStandaloneModeDropsAllSends(t *testing.T) {
	c := New(NewDiagnostics(nil))
	c.Initialize("payments", nil)

	if !c.Standalone() {
		t.Fatal("nil handler should mean standalone mode")
	}
	if c.RequestClose("user_action") {
		t.Error("standalone send should be a no-op")
	}
	if c.RequestNavigation("/home", nil) {
		t.Error("standalone send should be a no-op")
	}
}

func TestLastInitializeWins(t *testing.T) {
	c := New(NewDiagnostics(nil))
	a := &recorder{}
	b := &recorder{}

	c.Initialize("alpha", a.handler)
	c.Initialize("beta", b.handler)

	if !c.Send(TypeStateChanged, map[string]any{"state": "run"}) {
		t.Fatal("send after re-initialize should deliver")
	}
	if len(a.types) != 0 {
		t.Errorf("replaced handler received %d events, want 0", len(a.types))
	}
	if len(b.types) != 1 {
		t.Fatalf("active handler received %d events, want 1", len(b.types))
	}
	if got := b.payloads[0]["moduleId"]; got != "beta" {
		t.Errorf("moduleId = %v, want beta", got)
	}
}

func TestDisposeMakesSendsNoOps(t *testing.T) {
	c := New(NewDiagnostics(nil))
	r := &recorder{}
	c.Initialize("wallet", r.handler)
	c.Dispose()
	c.Dispose() // repeated dispose is harmless

	if c.Send(TypeStateChanged, map[string]any{"state": "x"}) {
		t.Error("send after dispose should be dropped")
	}
	if len(r.types) != 0 {
		t.Errorf("disposed handler received %d events", len(r.types))
	}
	if c.Initialized() {
		t.Error("channel should not report initialized after dispose")
	}
}

func TestEventStamping(t *testing.T) {
	c := New(NewDiagnostics(nil))
	r := &recorder{}
	c.Initialize("wallet", r.handler)

	c.NotifyStateChange("a")
	c.NotifyStateChange("b")
	c.NotifyStateChange("c")

	var prev time.Time
	for i, p := range r.payloads {
		if got := p["moduleId"]; got != "wallet" {
			t.Errorf("event %d moduleId = %v, want wallet", i, got)
		}
		stamp, ok := DecodeStamp(p)
		if !ok {
			t.Fatalf("event %d timestamp not RFC3339: %v", i, p["timestamp"])
		}
		if stamp.Timestamp.Before(prev) {
			t.Errorf("event %d timestamp %v precedes %v", i, stamp.Timestamp, prev)
		}
		prev = stamp.Timestamp
	}
}

func TestTimestampClampedAgainstBackwardsClock(t *testing.T) {
	c := New(NewDiagnostics(nil))
	r := &recorder{}
	c.Initialize("wallet", r.handler)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	c.now = func() time.Time { return clock }

	c.NotifyStateChange("a")
	clock = base.Add(-time.Second) // wall clock steps backwards
	c.NotifyStateChange("b")

	s0, _ := DecodeStamp(r.payloads[0])
	s1, _ := DecodeStamp(r.payloads[1])
	if s1.Timestamp.Before(s0.Timestamp) {
		t.Errorf("timestamps regressed: %v then %v", s0.Timestamp, s1.Timestamp)
	}
}

func TestSendDeliversSynchronously(t *testing.T) {
	c := New(NewDiagnostics(nil))
	delivered := false
	c.Initialize("wallet", func(string, map[string]any) { delivered = true })

	c.SendCustom("wallet.refresh", nil)
	if !delivered {
		t.Fatal("handler should run in the caller's stack")
	}
}

func TestEmitterPayloadShapes(t *testing.T) {
	c := New(NewDiagnostics(nil))
	r := &recorder{}
	c.Initialize("wallet", r.handler)

	c.RequestNavigation("/send", map[string]any{"amount": 5})
	c.RequestClose("user_action")
	c.RequestLogout("expired")
	c.ReportError("boom", "module_build", "stack")
	c.RequestData("transactions", map[string]any{"limit": 10})
	c.NotifyStateChange("busy")

	want := []string{
		TypeNavigationRequest,
		TypeCloseRequest,
		TypeLogoutRequest,
		TypeErrorReport,
		TypeDataRequest,
		TypeStateChanged,
	}
	if len(r.types) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(r.types), len(want))
	}
	for i := range want {
		if r.types[i] != want[i] {
			t.Errorf("event %d type = %q, want %q", i, r.types[i], want[i])
		}
	}

	nav := AsNavigation(r.payloads[0])
	if nav.Route != "/send" || nav.Params["amount"] != 5 {
		t.Errorf("navigation payload = %+v", nav)
	}
	if AsClose(r.payloads[1]).Reason != "user_action" {
		t.Errorf("close payload = %+v", r.payloads[1])
	}
	errp := AsError(r.payloads[3])
	if errp.Message != "boom" || errp.Context != "module_build" || errp.Trace != "stack" {
		t.Errorf("error payload = %+v", errp)
	}
	if AsDataRequest(r.payloads[4]).Kind != "transactions" {
		t.Errorf("data payload = %+v", r.payloads[4])
	}
	if AsState(r.payloads[5]).State != "busy" {
		t.Errorf("state payload = %+v", r.payloads[5])
	}
}

func TestSessionReplacementRecordsDiagnostic(t *testing.T) {
	c := New(NewDiagnostics(nil))
	c.Initialize("alpha", func(string, map[string]any) {})
	c.Initialize("beta", func(string, map[string]any) {})

	var found bool
	for _, e := range c.Diagnostics().Entries() {
		if e.Kind == "session" {
			found = true
		}
	}
	if !found {
		t.Error("session replacement should record a diagnostic")
	}
}

func TestDiagnosticsRingCapped(t *testing.T) {
	d := NewDiagnostics(nil)
	for i := 0; i < maxDiagEntries+25; i++ {
		d.Record("drop", "msg", nil)
	}
	if got := len(d.Entries()); got != maxDiagEntries {
		t.Errorf("ring size = %d, want %d", got, maxDiagEntries)
	}
}
