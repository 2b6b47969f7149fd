// Package theme provides the Lip Gloss color palette and reusable styles
// for the library's own surfaces (fallback error panel, failure notice,
// debug dialog). It is a leaf package with no internal imports to avoid
// import cycles. Host-owned theme values travel opaquely on the config
// snapshot and are never interpreted here.
package theme

import "github.com/charmbracelet/lipgloss"

// UI chrome colors.
var (
	ColorBorder = lipgloss.Color("#4b5563")
	ColorDimmed = lipgloss.Color("#6b7280")
	ColorBright = lipgloss.Color("#f9fafb")
	ColorAccent = lipgloss.Color("#3b82f6")
)

// Severity colors.
var (
	ColorInfo    = lipgloss.Color("#2563eb")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorOK      = lipgloss.Color("#16a34a")
)

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleNotice = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Foreground(ColorBright)
)

// KindColor returns the color for a diagnostic kind string.
func KindColor(kind string) lipgloss.Color {
	switch kind {
	case "err", "drop":
		return ColorDanger
	case "nav":
		return ColorWarning
	case "send":
		return ColorInfo
	case "session":
		return ColorAccent
	default:
		return ColorDimmed
	}
}
