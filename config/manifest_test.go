package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseManifestDefaults(t *testing.T) {
	m, err := ParseManifest([]byte("id: wallet\n"))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Version != DefaultVersion {
		t.Errorf("Version = %q, want default", m.Version)
	}
	if m.InitialRoute != DefaultInitialRoute {
		t.Errorf("InitialRoute = %q, want default", m.InitialRoute)
	}
}

func TestParseManifestFull(t *testing.T) {
	raw := `
id: payments
version: 3.0.1
initial_route: /send
capabilities:
  - navigation
  - data.transactions
metadata:
  tier: gold
debug: true
`
	m, err := ParseManifest([]byte(raw))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.ID != "payments" || m.Version != "3.0.1" || m.InitialRoute != "/send" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Capabilities) != 2 || m.Capabilities[0] != "navigation" {
		t.Errorf("capabilities = %v", m.Capabilities)
	}
	if !m.Debug {
		t.Error("debug should be true")
	}

	s := m.Snapshot()
	if s.ModuleID != "payments" || s.Version != "3.0.1" || s.InitialRoute != "/send" || !s.DebugMode {
		t.Errorf("snapshot = %+v", s)
	}
	if s.MetaString("tier") != "gold" {
		t.Errorf("metadata not carried: %+v", s.Metadata)
	}
}

func TestParseManifestMissingID(t *testing.T) {
	if _, err := ParseManifest([]byte("version: 1.0.0\n")); err == nil {
		t.Fatal("manifest without id should fail")
	}
}

func TestParseManifestBadYAML(t *testing.T) {
	if _, err := ParseManifest([]byte("id: [unclosed\n")); err == nil {
		t.Fatal("invalid yaml should fail")
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "module.yaml")
	if err := os.WriteFile(path, []byte("id: wallet\nversion: 2.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.ID != "wallet" || m.Version != "2.0.0" {
		t.Errorf("manifest = %+v", m)
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}
