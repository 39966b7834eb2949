package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault      ThemeName = "default"       // Violet/green dark theme
	ThemeHighContrast ThemeName = "high-contrast" // Saturated colors on black
	ThemeMono         ThemeName = "mono"          // Grayscale for limited terminals
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeHighContrast),
		string(ThemeMono),
	}
}

// IsBuiltinTheme checks if a theme name is a built-in theme.
func IsBuiltinTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	// Primary accent color (titles, active elements)
	Primary lipgloss.Color
	// Secondary accent color (ready states, help keys)
	Secondary lipgloss.Color
	// Warning color (empty-after-filter states)
	Warning lipgloss.Color
	// Error color (failed states)
	Error lipgloss.Color
	// Muted color (de-emphasized text)
	Muted lipgloss.Color
	// Surface color (status bar background)
	Surface lipgloss.Color
	// Text color (primary text)
	Text lipgloss.Color
	// Border color (pane borders)
	Border lipgloss.Color

	// Cursor marks the selected time step in every pane
	Cursor lipgloss.Color
	// Outlier marks loss values at or above the percentile threshold
	Outlier lipgloss.Color

	// Heat is the heatmap ramp from coldest to hottest
	Heat []lipgloss.Color
}

// DefaultPalette returns the default dark palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Violet-400
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red-400
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500

		Cursor:  lipgloss.Color("#60A5FA"), // Blue
		Outlier: lipgloss.Color("#F87171"), // Red

		Heat: []lipgloss.Color{
			lipgloss.Color("#1E3A8A"),
			lipgloss.Color("#0D9488"),
			lipgloss.Color("#84CC16"),
			lipgloss.Color("#FBBF24"),
			lipgloss.Color("#DC2626"),
		},
	}
}

// HighContrastPalette returns a saturated palette for bright or low-quality displays.
func HighContrastPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FFFF00"),
		Secondary: lipgloss.Color("#00FF00"),
		Warning:   lipgloss.Color("#FFA500"),
		Error:     lipgloss.Color("#FF0000"),
		Muted:     lipgloss.Color("#C0C0C0"),
		Surface:   lipgloss.Color("#000000"),
		Text:      lipgloss.Color("#FFFFFF"),
		Border:    lipgloss.Color("#FFFFFF"),

		Cursor:  lipgloss.Color("#00FFFF"),
		Outlier: lipgloss.Color("#FF00FF"),

		Heat: []lipgloss.Color{
			lipgloss.Color("#0000FF"),
			lipgloss.Color("#00FFFF"),
			lipgloss.Color("#00FF00"),
			lipgloss.Color("#FFFF00"),
			lipgloss.Color("#FF0000"),
		},
	}
}

// MonoPalette returns a grayscale palette.
func MonoPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FFFFFF"),
		Secondary: lipgloss.Color("#D4D4D4"),
		Warning:   lipgloss.Color("#A3A3A3"),
		Error:     lipgloss.Color("#FFFFFF"),
		Muted:     lipgloss.Color("#737373"),
		Surface:   lipgloss.Color("#262626"),
		Text:      lipgloss.Color("#F5F5F5"),
		Border:    lipgloss.Color("#525252"),

		Cursor:  lipgloss.Color("#FFFFFF"),
		Outlier: lipgloss.Color("#D4D4D4"),

		Heat: []lipgloss.Color{
			lipgloss.Color("#262626"),
			lipgloss.Color("#525252"),
			lipgloss.Color("#737373"),
			lipgloss.Color("#A3A3A3"),
			lipgloss.Color("#F5F5F5"),
		},
	}
}

// GetPalette returns the palette for a built-in theme name.
// Unknown names fall back to the default palette.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeHighContrast:
		return HighContrastPalette()
	case ThemeMono:
		return MonoPalette()
	default:
		return DefaultPalette()
	}
}

// HeatColor picks the ramp color for a value normalized to [0, 1].
func (p *ColorPalette) HeatColor(norm float64) lipgloss.Color {
	if len(p.Heat) == 0 {
		return p.Primary
	}
	switch {
	case norm <= 0:
		return p.Heat[0]
	case norm >= 1:
		return p.Heat[len(p.Heat)-1]
	}
	return p.Heat[int(norm*float64(len(p.Heat)))]
}
