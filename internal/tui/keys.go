package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard key bindings. It implements help.KeyMap.
type keyMap struct {
	StepBack     key.Binding
	StepForward  key.Binding
	JumpBack     key.Binding
	JumpForward  key.Binding
	PanLeft      key.Binding
	PanRight     key.Binding
	StartEarlier key.Binding
	StartLater   key.Binding
	EndEarlier   key.Binding
	EndLater     key.Binding
	AltUp        key.Binding
	AltDown      key.Binding
	FloorUp      key.Binding
	FloorDown    key.Binding
	ToggleCursor key.Binding
	TimeWindow   key.Binding
	AltWindow    key.Binding
	Goto         key.Binding
	Reset        key.Binding
	Refresh      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		StepBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "step back"),
		),
		StepForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "step forward"),
		),
		JumpBack: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "back 10"),
		),
		JumpForward: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "forward 10"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "pan window back"),
		),
		PanRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "pan window forward"),
		),
		StartEarlier: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "window start -10"),
		),
		StartLater: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "window start +10"),
		),
		EndEarlier: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "window end -10"),
		),
		EndLater: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "window end +10"),
		),
		AltUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "raise ceiling"),
		),
		AltDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "lower ceiling"),
		),
		FloorUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("K", "raise floor"),
		),
		FloorDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("J", "lower floor"),
		),
		ToggleCursor: key.NewBinding(
			key.WithKeys(" ", "c"),
			key.WithHelp("space", "toggle cursor"),
		),
		TimeWindow: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "set time window"),
		),
		AltWindow: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "set altitude window"),
		),
		Goto: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to time"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset filters"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R", "ctrl+r"),
			key.WithHelp("R", "reload data"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StepBack, k.StepForward, k.ToggleCursor, k.TimeWindow, k.AltWindow, k.Reset, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped into columns.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StepBack, k.StepForward, k.JumpBack, k.JumpForward, k.Goto, k.ToggleCursor},
		{k.PanLeft, k.PanRight, k.StartEarlier, k.StartLater, k.EndEarlier, k.EndLater, k.TimeWindow},
		{k.AltUp, k.AltDown, k.FloorUp, k.FloorDown, k.AltWindow},
		{k.Reset, k.Refresh, k.Help, k.Quit},
	}
}
