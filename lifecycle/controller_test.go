package lifecycle

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
)

// fakeModule is a scriptable module exercising every hook.
type fakeModule struct {
	id          string
	activateErr error

	initCalls    int
	depsCalls    int
	disposeCalls int
	lastCfg      config.Snapshot

	panicOnView   bool
	panicOnUpdate bool

	// disposedOrder records, at OnDispose time, how many events the host
	// had already received. Used to pin hook-before-notification ordering.
	disposedOrder func()
}

func (f *fakeModule) ID() string { return f.id }

func (f *fakeModule) CheckActivation(config.Snapshot) error { return f.activateErr }

func (f *fakeModule) OnInit(ctx *Context) tea.Cmd {
	f.initCalls++
	return nil
}

func (f *fakeModule) OnDependenciesChanged(cfg config.Snapshot) {
	f.depsCalls++
	f.lastCfg = cfg
}

func (f *fakeModule) OnDispose() {
	f.disposeCalls++
	if f.disposedOrder != nil {
		f.disposedOrder()
	}
}

func (f *fakeModule) Update(msg tea.Msg) (Module, tea.Cmd) {
	if f.panicOnUpdate {
		panic("fake: update failure")
	}
	return f, nil
}

func (f *fakeModule) View(width, height int) string {
	if f.panicOnView {
		panic("fake: view failure")
	}
	return "module content"
}

// hostRecorder captures the host's view of the event stream.
type hostRecorder struct {
	types    []string
	payloads []map[string]any
}

func (h *hostRecorder) handler(eventType string, payload map[string]any) {
	h.types = append(h.types, eventType)
	h.payloads = append(h.payloads, payload)
}

func newTestController(mod *fakeModule, handler channel.Handler) (*Controller, *channel.Channel) {
	ch := channel.New(channel.NewDiagnostics(nil))
	cfg := config.New(mod.id, config.WithDebug(true))
	return NewController(mod, cfg, ch, handler, nil), ch
}

func TestMountUnmountOrdering(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet"}
	ctrl, ch := newTestController(mod, host.handler)

	var eventsAtDispose int
	var channelLiveAtDispose bool
	mod.disposedOrder = func() {
		eventsAtDispose = len(host.types)
		channelLiveAtDispose = ch.Initialized()
	}

	ctrl.Mount()
	if ctrl.State() != StateMounted {
		t.Fatalf("state = %v after mount", ctrl.State())
	}
	if mod.initCalls != 1 {
		t.Errorf("OnInit ran %d times", mod.initCalls)
	}

	ch.NotifyStateChange("busy") // a module-specific event between the bookends

	ctrl.Unmount()
	if ctrl.State() != StateDisposed {
		t.Fatalf("state = %v after unmount", ctrl.State())
	}

	want := []string{channel.TypeModuleReady, channel.TypeStateChanged, channel.TypeModuleDisposed}
	if len(host.types) != len(want) {
		t.Fatalf("host received %v, want %v", host.types, want)
	}
	for i := range want {
		if host.types[i] != want[i] {
			t.Fatalf("host received %v, want %v", host.types, want)
		}
	}
	for i, p := range host.payloads {
		if p["moduleId"] != "wallet" {
			t.Errorf("event %d moduleId = %v", i, p["moduleId"])
		}
	}

	// OnDispose ran before module.disposed went out, and while the channel
	// session was still live.
	if eventsAtDispose != 2 {
		t.Errorf("OnDispose saw %d delivered events, want 2 (before module.disposed)", eventsAtDispose)
	}
	if !channelLiveAtDispose {
		t.Error("channel was already cleared when OnDispose ran")
	}
	if ch.Initialized() {
		t.Error("channel still initialized after unmount")
	}

	// Nothing sent after disposal reaches the host.
	ch.NotifyStateChange("late")
	if len(host.types) != 3 {
		t.Errorf("post-dispose send reached the host: %v", host.types)
	}
}

func TestMountIsIdempotentAndTerminal(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet"}
	ctrl, _ := newTestController(mod, host.handler)

	ctrl.Mount()
	ctrl.Mount()
	if mod.initCalls != 1 {
		t.Errorf("second mount re-ran OnInit: %d", mod.initCalls)
	}

	ctrl.Unmount()
	ctrl.Unmount()
	if mod.disposeCalls != 1 {
		t.Errorf("second unmount re-ran OnDispose: %d", mod.disposeCalls)
	}

	ctrl.Mount() // disposed is terminal
	if ctrl.State() != StateDisposed {
		t.Error("disposed controller remounted")
	}
}

func TestStandaloneMountSkipsReady(t *testing.T) {
	mod := &fakeModule{id: "wallet"}
	ctrl, ch := newTestController(mod, nil)

	ctrl.Mount()
	if !ch.Standalone() {
		t.Fatal("nil handler should mean standalone")
	}
	if mod.initCalls != 1 {
		t.Error("OnInit should still run standalone")
	}
	ctrl.Unmount() // must not panic with no handler
}

func TestDependenciesChangedHookNoChannelTraffic(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet"}
	ctrl, _ := newTestController(mod, host.handler)
	ctrl.Mount()

	sent := len(host.types)
	next := config.New("wallet", config.WithVersion("2.0.0"))
	ctrl.Update(DependenciesChangedMsg{Config: next})

	if mod.depsCalls != 1 {
		t.Fatalf("OnDependenciesChanged ran %d times", mod.depsCalls)
	}
	if mod.lastCfg.Version != "2.0.0" {
		t.Errorf("hook got config %+v", mod.lastCfg)
	}
	if len(host.types) != sent {
		t.Errorf("dependency change produced channel traffic: %v", host.types[sent:])
	}
}

func TestViewPanicRendersFallbackAndReports(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet", panicOnView: true}
	ctrl, _ := newTestController(mod, host.handler)
	ctrl.Mount()

	out := ctrl.View()
	if !strings.Contains(out, "wallet") || !strings.Contains(out, "failed to load") {
		t.Errorf("fallback surface missing, got:\n%s", out)
	}
	if !ctrl.Failed() {
		t.Error("controller should be in failed state")
	}

	last := host.types[len(host.types)-1]
	if last != channel.TypeErrorReport {
		t.Fatalf("last event = %q, want error.report", last)
	}
	errp := channel.AsError(host.payloads[len(host.payloads)-1])
	if errp.Context != "module_build" {
		t.Errorf("error context = %q", errp.Context)
	}
	if !strings.Contains(errp.Message, "view failure") {
		t.Errorf("error message = %q", errp.Message)
	}
	if errp.Trace == "" {
		t.Error("error report should carry a stack trace")
	}
}

func TestUpdatePanicRendersFallback(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet", panicOnUpdate: true}
	ctrl, _ := newTestController(mod, host.handler)
	ctrl.Mount()

	defer func() {
		if rec := recover(); rec != nil {
			t.Fatalf("module panic escaped the controller: %v", rec)
		}
	}()
	ctrl.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	if !ctrl.Failed() {
		t.Fatal("controller should be in failed state")
	}
	if !strings.Contains(ctrl.View(), "failed to load") {
		t.Error("fallback surface not shown after update panic")
	}
}

func TestFallbackGoBackRequestsClose(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet", panicOnView: true}
	ctrl, _ := newTestController(mod, host.handler)
	ctrl.Mount()
	ctrl.View() // trips the failure

	ctrl.Update(tea.KeyMsg{Type: tea.KeyEsc})

	last := host.types[len(host.types)-1]
	if last != channel.TypeCloseRequest {
		t.Fatalf("last event = %q, want close request", last)
	}
	if channel.AsClose(host.payloads[len(host.payloads)-1]).Reason != "build_failure" {
		t.Errorf("close reason = %+v", host.payloads[len(host.payloads)-1])
	}
}

func TestNotActivatableRendersFallbackWithoutReady(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet", activateErr: NotActivatable("needs auth")}
	ctrl, _ := newTestController(mod, host.handler)

	ctrl.Mount()
	if !ctrl.Failed() {
		t.Fatal("refused activation should fail the controller")
	}
	if mod.initCalls != 0 {
		t.Error("OnInit must not run for a refused module")
	}
	for _, typ := range host.types {
		if typ == channel.TypeModuleReady {
			t.Error("module.ready sent despite refused activation")
		}
	}
	out := ctrl.View()
	if !strings.Contains(out, "needs auth") {
		t.Errorf("debug-mode fallback should show the reason, got:\n%s", out)
	}
}

func TestWrappedNotActivatableKeepsReason(t *testing.T) {
	host := &hostRecorder{}
	wrapped := fmt.Errorf("checking activation: %w", NotActivatable("needs auth"))
	mod := &fakeModule{id: "wallet", activateErr: wrapped}
	ctrl, _ := newTestController(mod, host.handler)

	ctrl.Mount()
	if !ctrl.Failed() {
		t.Fatal("refused activation should fail the controller")
	}
	if ctrl.failText != "needs auth" {
		t.Errorf("reason = %q, want the unwrapped refusal reason", ctrl.failText)
	}
}

func TestRefusedActivationCloseReason(t *testing.T) {
	host := &hostRecorder{}
	mod := &fakeModule{id: "wallet", activateErr: NotActivatable("needs auth")}
	ctrl, _ := newTestController(mod, host.handler)
	ctrl.Mount()

	ctrl.Update(tea.KeyMsg{Type: tea.KeyEsc})

	last := host.types[len(host.types)-1]
	if last != channel.TypeCloseRequest {
		t.Fatalf("last event = %q, want close request", last)
	}
	if got := channel.AsClose(host.payloads[len(host.payloads)-1]).Reason; got != "not_activatable" {
		t.Errorf("close reason = %q, want not_activatable", got)
	}
}

func TestNotActivatableError(t *testing.T) {
	err := NotActivatable("version mismatch")
	if err.Reason != "version mismatch" {
		t.Errorf("Reason = %q", err.Reason)
	}
	if !strings.Contains(err.Error(), "version mismatch") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateUninitialized: "uninitialized",
		StateMounted:       "mounted",
		StateDisposed:      "disposed",
		State(42):          "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
