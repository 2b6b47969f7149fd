package lifecycle

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sitrontech/mini-app-module-interface/theme"
)

// renderFallback draws the error surface shown in place of module content
// after an activation refusal or a build failure. It is not panic-protected:
// a failure here has nowhere left to degrade to and propagates.
func (c *Controller) renderFallback() string {
	innerW := c.width - 6
	if innerW < 30 {
		innerW = 30
	}

	title := theme.StyleError.Bold(true).Render("✗ " + c.cfg.ModuleID + " failed to load")
	reason := theme.StyleDimmed.Render("This mini-app could not be displayed.")
	help := theme.StyleDimmed.Render(c.back.Help().Key + ": " + c.back.Help().Desc)

	lines := []string{title, "", reason}
	if c.cfg.DebugMode && c.failText != "" {
		detail := c.failText
		if len(detail) > innerW*4 {
			detail = detail[:innerW*4]
		}
		lines = append(lines, "", theme.StyleDimmed.Render(detail))
	}
	lines = append(lines, "", help)

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return theme.StyleBorder.
		Width(innerW).
		Padding(1, 2).
		BorderForeground(theme.ColorDanger).
		Render(content)
}
