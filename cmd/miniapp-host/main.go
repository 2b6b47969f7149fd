// Command miniapp-host runs a demo host shell with the sample wallet
// mini-app mounted. It exercises the full module/host protocol in-process:
// channel events show up in the host event pane, navigation resolves through
// a three-level scope chain, and the failure path feeds the notice and the
// debug dialog.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
	"github.com/sitrontech/mini-app-module-interface/lifecycle"
	"github.com/sitrontech/mini-app-module-interface/navigation"
	"github.com/sitrontech/mini-app-module-interface/remote"
)

func main() {
	manifestPath := flag.String("manifest", "", "Path to a module manifest (YAML); defaults to a built-in wallet config")
	logPath := flag.String("log", "", "File for structured diagnostics (default: discard)")
	hostURL := flag.String("host-url", "", "WebSocket URL of an out-of-process host; events are mirrored there when set")
	flag.Parse()

	var logSink io.Writer
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logSink = f
	}

	cfg, err := buildConfig(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	diag := channel.NewDiagnostics(logSink)
	ch := channel.New(diag)
	log := &hostLog{}

	// Events always land in the local pane; with -host-url they are also
	// mirrored over the wire.
	handler := channel.Handler(log.handler)
	var link *remote.HostLink
	if *hostURL != "" {
		link = remote.NewHostLink(*hostURL, "", diag)
		forward := link.Handler()
		handler = func(eventType string, payload map[string]any) {
			log.handler(eventType, payload)
			forward(eventType, payload)
		}
	}

	// Three-level provider chain: the navigator sits at the host root, two
	// hops above the module, so resolution exercises the ancestor walk.
	root := navigation.NewScope("host-root", nil).AsBoundary().WithNavigator(demoNavigator{})
	shellScope := navigation.NewScope("shell", root)
	moduleScope := navigation.NewScope(cfg.ModuleID, shellScope)

	resolver := navigation.NewResolver(diag)
	resolver.PreNavigate = func(req navigation.Request) {
		diag.Record("nav", "navigating to "+req.ModuleID, map[string]any{"route": req.Route, "source": req.Source})
	}

	mod := newWalletModule()
	ctrl := lifecycle.NewController(mod, cfg, ch, handler, moduleScope)

	shell := newShell(ctrl, ch, diag, resolver, moduleScope, log, cfg, link)
	p := tea.NewProgram(shell, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig loads the manifest when given, otherwise falls back to a
// built-in wallet activation.
func buildConfig(manifestPath string) (config.Snapshot, error) {
	user := &config.UserInfo{ID: "u-1001", Name: "Demo User"}
	if manifestPath == "" {
		return config.New("wallet",
			config.WithUser(user),
			config.WithDebug(true),
			config.WithMetadata(map[string]any{"tier": "demo"}),
		), nil
	}
	m, err := config.LoadManifest(manifestPath)
	if err != nil {
		return config.Snapshot{}, err
	}
	return m.Snapshot(config.WithUser(user)), nil
}

// demoNavigator is the host-root navigation capability. It accepts the
// payments module and rejects everything else so both resolver paths are
// reachable from the keyboard.
type demoNavigator struct{}

func (demoNavigator) NavigateToModule(moduleID string, data map[string]any) error {
	if moduleID == "payments" {
		return nil // a real host would swap the mounted module here
	}
	return fmt.Errorf("no route registered for %q", moduleID)
}
