// Package config holds the immutable value types a host hands to a mini-app
// module at activation: the configuration snapshot, the authenticated user,
// and the auth token bundle. It is a leaf package with no internal imports.
package config

// DefaultVersion is used when the host does not pin a module version.
const DefaultVersion = "1.0.0"

// DefaultInitialRoute is the route a module opens on when none is given.
const DefaultInitialRoute = "/"

// UserInfo identifies the authenticated user a module runs on behalf of.
// Its presence on a Snapshot implies an authenticated context.
type UserInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// Snapshot carries everything the host hands to a module instance. It is
// immutable: no field changes after construction, and every With* method
// returns a fresh copy. A snapshot is created per module activation, owned
// by that instance for its mounted lifetime, and discarded on unmount.
type Snapshot struct {
	ModuleID     string         `json:"moduleId"`
	Version      string         `json:"version"`
	InitialRoute string         `json:"initialRoute"`
	User         *UserInfo      `json:"user,omitempty"`
	Auth         *AuthConfig    `json:"authConfig,omitempty"`
	Theme        any            `json:"themeSnapshot,omitempty"` // host-owned, passed through unparsed
	Metadata     map[string]any `json:"metadata,omitempty"`
	DebugMode    bool           `json:"debugMode"`
}

// Option customises a Snapshot at construction time.
type Option func(*Snapshot)

// WithVersion pins the module version.
func WithVersion(v string) Option {
	return func(s *Snapshot) { s.Version = v }
}

// WithInitialRoute sets the route the module opens on.
func WithInitialRoute(route string) Option {
	return func(s *Snapshot) { s.InitialRoute = route }
}

// WithUser attaches the authenticated user.
func WithUser(u *UserInfo) Option {
	return func(s *Snapshot) { s.User = u }
}

// WithAuth attaches the token bundle.
func WithAuth(a *AuthConfig) Option {
	return func(s *Snapshot) { s.Auth = a }
}

// WithTheme attaches the host's opaque theme values.
func WithTheme(theme any) Option {
	return func(s *Snapshot) { s.Theme = theme }
}

// WithMetadata merges keys into the metadata bag.
func WithMetadata(md map[string]any) Option {
	return func(s *Snapshot) {
		for k, v := range md {
			s.Metadata[k] = v
		}
	}
}

// WithDebug enables debug mode.
func WithDebug(on bool) Option {
	return func(s *Snapshot) { s.DebugMode = on }
}

// New builds a Snapshot for the given module ID. moduleID must be non-empty;
// it is the identity key stamped on every event the module emits.
func New(moduleID string, opts ...Option) Snapshot {
	s := Snapshot{
		ModuleID:     moduleID,
		Version:      DefaultVersion,
		InitialRoute: DefaultInitialRoute,
		Metadata:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Authenticated reports whether the snapshot carries a user.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// MetaString returns a string metadata value, or "" when absent or not a
// string.
func (s Snapshot) MetaString(key string) string {
	if v, ok := s.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// clone copies the snapshot, deep-copying the metadata bag so the copy
// cannot alias the original.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Metadata = make(map[string]any, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	return out
}

// WithUpdatedMetadata returns a copy with the given keys merged in. The
// receiver is left untouched.
func (s Snapshot) WithUpdatedMetadata(md map[string]any) Snapshot {
	out := s.clone()
	for k, v := range md {
		out.Metadata[k] = v
	}
	return out
}

// WithUpdatedAuth returns a copy carrying a replacement token bundle.
func (s Snapshot) WithUpdatedAuth(a *AuthConfig) Snapshot {
	out := s.clone()
	out.Auth = a
	return out
}

// WithUpdatedTheme returns a copy carrying new host theme values.
func (s Snapshot) WithUpdatedTheme(theme any) Snapshot {
	out := s.clone()
	out.Theme = theme
	return out
}
