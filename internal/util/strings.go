// Package util provides string helpers shared by the terminal renderers.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text. It is one column wide.
const Ellipsis = "…"

// TruncateString truncates s to maxLen runes, ending in Ellipsis if
// truncated. It does not account for ANSI escape codes or wide characters;
// use TruncateANSI for styled output.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return string(runes[:1])
	}
	return string(runes[:maxLen-1]) + Ellipsis
}

// TruncateANSI truncates s to maxWidth visual columns, ending in Ellipsis if
// truncated. Escape sequences are preserved.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail in the final width
	return ansi.Truncate(s, maxWidth, Ellipsis)
}
