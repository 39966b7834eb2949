package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/tui/styles"
	"github.com/Iron-Ham/flightdash/internal/util"
	"github.com/Iron-Ham/flightdash/internal/view"
)

// Step sizes for keyboard scrubbing.
const (
	jumpSteps = 10
	panSteps  = 10
)

// promptKind identifies what the text input is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptTime
	promptAlt
	promptGoto
)

func (p promptKind) label() string {
	switch p {
	case promptTime:
		return "time window (min,max; empty clears): "
	case promptAlt:
		return "altitude window ft (min,max; empty clears): "
	case promptGoto:
		return "go to time: "
	}
	return ""
}

// loadedMsg reports that a Load or Refresh finished.
type loadedMsg struct{ err error }

// dataChangedMsg reports that a series finished loading in the background.
type dataChangedMsg struct{}

// Options configures the dashboard model.
type Options struct {
	Styles      *styles.Styles
	ShowHelp    bool
	HeatmapRows int
}

// Model is the bubbletea model of the four-pane dashboard.
type Model struct {
	ctx      context.Context
	session  *dashboard.Session
	controls *dashboard.Controls
	styles   *styles.Styles
	keys     keyMap
	help     help.Model
	input    textinput.Model
	prompt   promptKind

	views       view.Set
	width       int
	height      int
	showHelp    bool
	heatmapRows int
	loading     bool

	errorMessage string
	infoMessage  string
}

// NewModel creates the dashboard model for session.
func NewModel(ctx context.Context, session *dashboard.Session, opts Options) Model {
	st := opts.Styles
	if st == nil {
		st = styles.New(nil)
	}
	in := textinput.New()
	in.PromptStyle = st.Prompt
	in.CharLimit = 64

	h := help.New()
	h.Styles.ShortKey = st.HelpKey
	h.Styles.FullKey = st.HelpKey

	return Model{
		ctx:         ctx,
		session:     session,
		controls:    session.Controls(),
		styles:      st,
		keys:        defaultKeyMap(),
		help:        h,
		input:       in,
		views:       session.Views(),
		showHelp:    opts.ShowHelp,
		heatmapRows: opts.HeatmapRows,
		loading:     true,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.load(false)
}

// load runs a Load, or a Refresh, off the event loop.
func (m Model) load(refresh bool) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		if refresh {
			return loadedMsg{err: s.Refresh(ctx)}
		}
		return loadedMsg{err: s.Load(ctx)}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("load failed: %v", msg.err)
		} else {
			m.infoMessage = "data loaded"
		}
		m.views = m.session.Views()
		return m, nil

	case dataChangedMsg:
		m.views = m.session.Views()
		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.handlePromptKey(msg)
		}
		return m.handleKeypress(msg)
	}

	return m, nil
}

// handleKeypress processes keyboard input outside of prompts.
func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.infoMessage = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.infoMessage = "reloading…"
		return m, m.load(true)

	case key.Matches(msg, m.keys.StepBack):
		m.controls.StepCursor(-1)
	case key.Matches(msg, m.keys.StepForward):
		m.controls.StepCursor(1)
	case key.Matches(msg, m.keys.JumpBack):
		m.controls.StepCursor(-jumpSteps)
	case key.Matches(msg, m.keys.JumpForward):
		m.controls.StepCursor(jumpSteps)
	case key.Matches(msg, m.keys.PanLeft):
		m.controls.PanTime(-panSteps)
	case key.Matches(msg, m.keys.PanRight):
		m.controls.PanTime(panSteps)
	case key.Matches(msg, m.keys.StartEarlier):
		m.controls.SetTimeMin(int(m.controls.TimeWindow().Min) - panSteps)
	case key.Matches(msg, m.keys.StartLater):
		m.controls.SetTimeMin(int(m.controls.TimeWindow().Min) + panSteps)
	case key.Matches(msg, m.keys.EndEarlier):
		m.controls.SetTimeMax(int(m.controls.TimeWindow().Max) - panSteps)
	case key.Matches(msg, m.keys.EndLater):
		m.controls.SetTimeMax(int(m.controls.TimeWindow().Max) + panSteps)
	case key.Matches(msg, m.keys.AltUp):
		m.controls.SetAltMax(m.controls.AltWindow().Max + m.controls.AltStep())
	case key.Matches(msg, m.keys.AltDown):
		m.controls.SetAltMax(m.controls.AltWindow().Max - m.controls.AltStep())
	case key.Matches(msg, m.keys.FloorUp):
		m.controls.SetAltMin(m.controls.AltWindow().Min + m.controls.AltStep())
	case key.Matches(msg, m.keys.FloorDown):
		m.controls.SetAltMin(m.controls.AltWindow().Min - m.controls.AltStep())
	case key.Matches(msg, m.keys.ToggleCursor):
		m.controls.ToggleCursor()
	case key.Matches(msg, m.keys.Reset):
		m.controls.Reset()
		m.infoMessage = "filters reset"

	case key.Matches(msg, m.keys.TimeWindow):
		return m.openPrompt(promptTime)
	case key.Matches(msg, m.keys.AltWindow):
		return m.openPrompt(promptAlt)
	case key.Matches(msg, m.keys.Goto):
		return m.openPrompt(promptGoto)

	default:
		return m, nil
	}

	m.views = m.session.Views()
	return m, nil
}

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = kind.label()
	m.input.SetValue("")
	return m, m.input.Focus()
}

// handlePromptKey feeds the text input until enter or esc.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		kind, text := m.prompt, strings.TrimSpace(m.input.Value())
		m.prompt = promptNone
		m.input.Blur()
		if err := m.applyPrompt(kind, text); err != nil {
			m.errorMessage = err.Error()
		}
		m.views = m.session.Views()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyPrompt commits a typed window or cursor time.
func (m Model) applyPrompt(kind promptKind, text string) error {
	store := m.session.Store()
	switch kind {
	case promptTime, promptAlt:
		r, err := dashboard.ParseRange(text)
		if err != nil {
			return err
		}
		if kind == promptTime {
			store.SetTimeFilter(r)
		} else {
			store.SetAltitudeFilter(r)
		}
	case promptGoto:
		t, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid time %q", text)
		}
		m.controls.SetSelected(t)
	}
	return nil
}

// View renders the dashboard
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	st := m.styles
	paneWidth := max(20, m.width/2-2)
	inner := paneWidth - 4

	pane := func(title, body string) string {
		return st.Pane.Width(paneWidth).Render(st.PaneTitle.Render(title) + "\n" + body)
	}

	v := m.views
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		pane("Flight path", renderTrajectory(st, v.Trajectory, inner)),
		pane("Reconstruction loss", renderLoss(st, v.Loss, inner)),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		pane("Top contributing features", renderTopFeatures(st, v.TopFeatures, inner)),
		pane("Feature loss heatmap", renderHeatmap(st, v.Heatmap, m.heatmapRows, inner)),
	)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(bottom)
	b.WriteString("\n")

	switch {
	case m.prompt != promptNone:
		b.WriteString(m.input.View())
	case m.errorMessage != "":
		b.WriteString(util.TruncateANSI(st.ErrorMsg.Render(m.errorMessage), m.width))
	case m.infoMessage != "":
		b.WriteString(util.TruncateANSI(st.InfoMsg.Render(m.infoMessage), m.width))
	}

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	st := m.styles
	title := st.Title.Render("flightdash")
	src := st.Muted.Render(fmt.Sprintf(" %s · session %s", m.session.Source().Name(), shortID(m.session.ID)))
	if m.loading {
		src += st.Loading.Render("  loading…")
	}
	line := title + src
	return st.StatusBar.Width(max(0, m.width)).Render(line) + "\n" + renderSummary(st, m.views.Snapshot)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
