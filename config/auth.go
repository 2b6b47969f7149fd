package config

import "time"

// DefaultTokenType is the scheme used when the host does not set one.
const DefaultTokenType = "Bearer"

// AuthConfig is the token bundle a host may hand to a module. The expiry
// predicates are pure and time-dependent: they are evaluated against the
// clock on every call and never cached.
type AuthConfig struct {
	AccessToken   string     `json:"accessToken,omitempty"`
	AccessExpiry  *time.Time `json:"accessExpiry,omitempty"`
	RefreshToken  string     `json:"refreshToken,omitempty"`
	RefreshExpiry *time.Time `json:"refreshExpiry,omitempty"`
	TokenType     string     `json:"tokenType"`

	// now is the clock the predicates read. Tests inject a fixed clock;
	// a nil value means time.Now.
	now func() time.Time
}

// NewAuthConfig builds a bundle with the default token type.
func NewAuthConfig(accessToken string) *AuthConfig {
	return &AuthConfig{AccessToken: accessToken, TokenType: DefaultTokenType}
}

// WithClock returns a copy reading time from the given clock.
func (a AuthConfig) WithClock(now func() time.Time) *AuthConfig {
	a.now = now
	return &a
}

func (a *AuthConfig) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// HasAccessToken reports whether an access token is present.
func (a *AuthConfig) HasAccessToken() bool {
	return a != nil && a.AccessToken != ""
}

// IsAccessExpired reports whether the access token's expiry has passed.
// A missing expiry means the token does not expire.
func (a *AuthConfig) IsAccessExpired() bool {
	if a == nil || a.AccessExpiry == nil {
		return false
	}
	return a.clock().After(*a.AccessExpiry)
}

// IsRefreshExpired reports whether the refresh token's expiry has passed.
func (a *AuthConfig) IsRefreshExpired() bool {
	if a == nil || a.RefreshExpiry == nil {
		return false
	}
	return a.clock().After(*a.RefreshExpiry)
}

// NeedsRefresh reports whether the module should ask the host for a token
// refresh: an access token exists, it has expired, and the refresh token is
// still usable.
func (a *AuthConfig) NeedsRefresh() bool {
	return a.HasAccessToken() && a.IsAccessExpired() && !a.IsRefreshExpired()
}
