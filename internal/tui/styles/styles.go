package styles

import "github.com/charmbracelet/lipgloss"

// Styles are the rendered styles for one palette.
type Styles struct {
	Palette *ColorPalette

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Pane      lipgloss.Style
	PaneTitle lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style

	// Status badges per view state
	Loading lipgloss.Style
	NoData  lipgloss.Style
	Empty   lipgloss.Style
	Ready   lipgloss.Style
	Failed  lipgloss.Style

	Cursor  lipgloss.Style
	Outlier lipgloss.Style

	StatusBar lipgloss.Style
	HelpKey   lipgloss.Style
	ErrorMsg  lipgloss.Style
	InfoMsg   lipgloss.Style
	Prompt    lipgloss.Style
}

// New builds Styles from a palette. A nil palette uses the default.
func New(p *ColorPalette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),

		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		PaneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),

		Text:  lipgloss.NewStyle().Foreground(p.Text),
		Muted: lipgloss.NewStyle().Foreground(p.Muted),

		Loading: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		NoData:  lipgloss.NewStyle().Foreground(p.Muted),
		Empty:   lipgloss.NewStyle().Foreground(p.Warning),
		Ready:   lipgloss.NewStyle().Foreground(p.Secondary),
		Failed:  lipgloss.NewStyle().Foreground(p.Error).Bold(true),

		Cursor:  lipgloss.NewStyle().Foreground(p.Cursor).Bold(true),
		Outlier: lipgloss.NewStyle().Foreground(p.Outlier),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),

		InfoMsg: lipgloss.NewStyle().
			Foreground(p.Secondary),

		Prompt: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),
	}
}

// Heat returns a style whose foreground is the ramp color for norm.
func (s *Styles) Heat(norm float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.Palette.HeatColor(norm))
}
