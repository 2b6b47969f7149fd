package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the host-side YAML declaration of an installable module: its
// identity, entry route, and the capabilities it asks the host for. The
// capability list is declarative; enforcement is the host's responsibility.
type Manifest struct {
	ID           string         `yaml:"id"`
	Version      string         `yaml:"version"`
	InitialRoute string         `yaml:"initial_route"`
	Capabilities []string       `yaml:"capabilities"`
	Metadata     map[string]any `yaml:"metadata"`
	Debug        bool           `yaml:"debug"`
}

// LoadManifest reads a module manifest from path, applying defaults before
// unmarshal so absent keys keep their documented values.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest from raw YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{
		Version:      DefaultVersion,
		InitialRoute: DefaultInitialRoute,
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest: missing module id")
	}
	return m, nil
}

// Snapshot builds the activation snapshot a host passes to the module
// instance declared by this manifest.
func (m *Manifest) Snapshot(opts ...Option) Snapshot {
	base := []Option{
		WithVersion(m.Version),
		WithInitialRoute(m.InitialRoute),
		WithDebug(m.Debug),
	}
	if len(m.Metadata) > 0 {
		base = append(base, WithMetadata(m.Metadata))
	}
	return New(m.ID, append(base, opts...)...)
}
