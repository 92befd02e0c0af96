package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"theory-keys/analysis"
	"theory-keys/debug"
	"theory-keys/keyboard"
	"theory-keys/midi"
	"theory-keys/render"
	"theory-keys/state"
	"theory-keys/theme"
	"theory-keys/widgets"
)

// Options configures NewModel
type Options struct {
	Context   context.Context
	Store     *state.Store
	Analyzer  analysis.Analyzer
	DeviceMgr *midi.DeviceManager // nil disables MIDI input
	Theme     *theme.Theme
	Columns   int // keyboard width cap, in cells
	Rows      int
}

// layoutBounds holds cached layout info
type layoutBounds struct {
	kbTop int
}

type Model struct {
	ctx       context.Context
	store     *state.Store
	analyzer  analysis.Analyzer
	deviceMgr *midi.DeviceManager
	theme     *theme.Theme
	renderer  *render.Renderer
	kb        *widgets.Keyboard
	maxCols   int
	rows      int

	input    textinput.Model
	spinner  spinner.Model
	snap     state.Snapshot
	devices  map[string]bool
	tooltip  string
	bounds   *layoutBounds
	showHelp bool
	quitting bool
}

// AnalysisMsg carries the outcome of one query
type AnalysisMsg struct {
	Ticket state.Ticket
	Result *analysis.Result
	Err    error
}

// SnapshotMsg is sent when the store value is replaced
type SnapshotMsg state.Snapshot

type DeviceEventMsg midi.DeviceEvent

// HeldMsg is a settled held-note set from a connected keyboard
type HeldMsg struct {
	ID    string
	Notes []string
	ctrl  midi.Controller
}

func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Store == nil {
		opts.Store = state.NewStore()
	}
	if opts.Theme == nil {
		opts.Theme = theme.New(nil)
	}
	if opts.Columns <= 0 {
		opts.Columns = 56
	}
	if opts.Rows <= 0 {
		opts.Rows = 9
	}

	ti := textinput.New()
	ti.Placeholder = "e.g., C Major Scale, D Minor 7, Tritone from C"
	ti.Prompt = "❯ "
	ti.CharLimit = 200
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(opts.Theme.Accent())

	return Model{
		ctx:       opts.Context,
		store:     opts.Store,
		analyzer:  opts.Analyzer,
		deviceMgr: opts.DeviceMgr,
		theme:     opts.Theme,
		renderer:  render.New(opts.Theme),
		// sized on the first WindowSizeMsg
		kb:      widgets.NewKeyboard(0, 0),
		maxCols: opts.Columns,
		rows:    opts.Rows,
		input:   ti,
		spinner: sp,
		snap:    opts.Store.Current(),
		devices: make(map[string]bool),
		bounds:  &layoutBounds{},
	}
}

func ListenForUpdates(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(<-store.Updates())
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForHeld(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		notes, ok := <-c.Changes()
		if !ok {
			return nil
		}
		return HeldMsg{ID: c.ID(), Notes: notes, ctrl: c}
	}
}

// Analyze runs the query off the UI goroutine
func Analyze(ctx context.Context, a analysis.Analyzer, t state.Ticket) tea.Cmd {
	return func() tea.Msg {
		if a == nil {
			return AnalysisMsg{Ticket: t, Err: fmt.Errorf("no analyzer configured")}
		}
		res, err := a.Analyze(ctx, t.Query)
		return AnalysisMsg{Ticket: t, Result: res, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		ListenForUpdates(m.store),
		ListenForDevices(m.deviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			m.showHelp = !m.showHelp
			return m, nil

		case "esc":
			m.input.SetValue("")
			m.store.Reset()
			return m, nil

		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			ticket := m.store.Begin(query)
			m.snap = m.store.Current()
			return m, tea.Batch(Analyze(m.ctx, m.analyzer, ticket), m.spinner.Tick)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		cols := min(m.maxCols, msg.Width-2)
		cols -= cols % keyboard.WhiteKeys
		m.kb.Resize(max(cols, 0), m.rows)
		m.draw()
		return m, nil

	case tea.MouseMsg:
		m.tooltip = m.kb.HitTest(m.snap.Keys, msg.X, msg.Y-m.bounds.kbTop)
		return m, nil

	case AnalysisMsg:
		if msg.Err != nil {
			debug.Log("tui", "analysis %q failed: %v", msg.Ticket.Query, msg.Err)
		}
		m.store.Apply(msg.Ticket, msg.Result, msg.Err)
		return m, nil

	case SnapshotMsg:
		m.snap = state.Snapshot(msg)
		m.draw()
		return m, ListenForUpdates(m.store)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		cmds := []tea.Cmd{ListenForDevices(m.deviceMgr)}
		switch event.Type {
		case midi.DeviceConnected:
			m.devices[event.ID] = true
			cmds = append(cmds, ListenForHeld(event.Controller))
		case midi.DeviceDisconnected:
			delete(m.devices, event.ID)
		}
		return m, tea.Batch(cmds...)

	case HeldMsg:
		m.store.SetNotes(msg.Notes)
		return m, ListenForHeld(msg.ctrl)

	case spinner.TickMsg:
		if !m.snap.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// draw is the only place the keyboard surface is touched
func (m *Model) draw() {
	m.renderer.Render(m.kb, m.snap.Keys)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.theme.FG())
	badgeStyle := lipgloss.NewStyle().
		Foreground(m.theme.FG()).
		Background(m.theme.Muted()).
		Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(m.theme.Error())

	status := ""
	if len(m.devices) > 0 {
		status = fmt.Sprintf("  midi:%d", len(m.devices))
	}
	header := headerStyle.Render("theory-keys") + dimStyle.Render(status)

	input := m.input.View()
	if m.snap.Pending {
		input += " " + m.spinner.View()
	}

	var meta []string
	switch {
	case m.snap.Result != nil:
		r := m.snap.Result
		meta = append(meta,
			fgStyle.Bold(true).Render(r.Name)+" "+badgeStyle.Render(strings.ToUpper(string(r.Type))),
			dimStyle.Render(r.Description),
		)
	case m.snap.Source == state.SourceMIDI && len(m.snap.Notes) > 0:
		meta = append(meta, fgStyle.Render("held: "+strings.Join(m.snap.Notes, " ")))
	}
	if m.snap.Err != nil {
		meta = append(meta, errStyle.Render("Could not analyze music request: "+m.snap.Err.Error()))
	}

	help := dimStyle.Render(widgets.RenderKeyLine([]widgets.KeyBinding{
		{Key: "enter", Desc: "analyze"},
		{Key: "esc", Desc: "clear"},
		{Key: "tab", Desc: "help"},
		{Key: "ctrl+c", Desc: "quit"},
	}))
	if m.showHelp {
		help = dimStyle.Render(widgets.RenderKeyHelp(helpSections))
	}

	kbView := m.kb.View()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(input)
	out.WriteString("\n\n")
	for _, line := range meta {
		out.WriteString(line)
		out.WriteString("\n")
	}
	out.WriteString("\n")
	m.bounds.kbTop = lipgloss.Height(out.String()) - 1
	out.WriteString(kbView)
	out.WriteString("\n")
	out.WriteString(m.legend())
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.tooltip != "" {
		out.WriteString("  ")
		out.WriteString(badgeStyle.Render(m.tooltip))
	}

	return out.String()
}

var helpSections = []widgets.KeySection{
	{
		Title: "Query",
		Keys: []widgets.KeyBinding{
			{Key: "enter", Desc: "ask for the notes of a scale, chord, interval or melody"},
			{Key: "esc", Desc: "clear the query and the keyboard"},
		},
	},
	{
		Title: "Keyboard",
		Keys: []widgets.KeyBinding{
			{Key: "mouse", Desc: "hover a key to see its name"},
			{Key: "midi", Desc: "held notes on a connected keyboard light up"},
		},
	},
	{
		Keys: []widgets.KeyBinding{
			{Key: "tab", Desc: "toggle this help"},
			{Key: "ctrl+c", Desc: "quit"},
		},
	},
}

// legend marks which pitch classes are lit, "● C ○ C# ● D ..."
func (m Model) legend() string {
	lit := make(map[keyboard.Note]bool)
	for _, k := range keyboard.ActiveKeys(m.snap.Keys) {
		lit[k.Note] = true
	}

	parts := make([]string, len(keyboard.Notes))
	for i, n := range keyboard.Notes {
		if lit[n] {
			parts[i] = widgets.RenderSwatch(string(m.theme.Symbols.Active), m.theme.KeyFill(n.IsBlack(), true)) + string(n)
		} else {
			parts[i] = widgets.RenderSwatch(string(m.theme.Symbols.Inactive), m.theme.KeyStroke(false)) + string(n)
		}
	}
	return strings.Join(parts, " ")
}
