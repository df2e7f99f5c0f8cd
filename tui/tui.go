package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nathoo/worldnav/cli"
	"github.com/nathoo/worldnav/engine"
	"github.com/nathoo/worldnav/engine/save"
	"github.com/nathoo/worldnav/engine/state"
	"github.com/nathoo/worldnav/loader"
	"github.com/nathoo/worldnav/types"
)

// rawLine stores an unstyled transcript line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for meta-command output
}

// Model is the Bubble Tea model for the navigator host simulator.
type Model struct {
	engine  *engine.Engine
	session string
	chats   map[string][]types.Message

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width     int
	height    int
	ready     bool
	trace     bool
	quitting  bool
	turns     int
	exportDir string
}

// outputMsg carries lines into the Update loop.
type outputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// WorldReloadedMsg reports a world swapped in by the file watcher.
type WorldReloadedMsg struct {
	World    *types.World
	Warnings []string
}

// WorldErrorMsg reports a failed world reload.
type WorldErrorMsg struct {
	Err error
}

// New creates a TUI model wired to the given engine. An empty session
// gets a fresh id.
func New(eng *engine.Engine, session string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 512
	ti.PromptStyle = styleInputPrompt

	if session == "" {
		session = uuid.NewString()
	}
	home, _ := os.UserHomeDir()
	return Model{
		engine:    eng,
		session:   session,
		chats:     map[string][]types.Message{},
		input:     ti,
		history:   NewHistory(100),
		exportDir: filepath.Join(home, ".worldnav", "exports"),
	}
}

// NewProgram wraps the model in a Bubble Tea program. Callers may Send
// WorldReloadedMsg and WorldErrorMsg to it.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}

// Init returns the initial command that prints the banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return outputMsg{lines: []string{
			worldSummary(m.engine.World()),
			fmt.Sprintf("Session %s. Type /help for commands.", m.session),
		}, isSystem: true}
	}
}

// Update handles messages (key presses, window resize, output, reloads).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)

	case WorldReloadedMsg:
		lines := []string{"Reloaded " + worldSummary(msg.World)}
		for _, w := range msg.Warnings {
			lines = append(lines, "warning: "+w)
		}
		m = m.appendOutput(outputMsg{lines: lines, isSystem: true})

	case WorldErrorMsg:
		m = m.appendOutput(outputMsg{
			lines:    []string{fmt.Sprintf("World reload failed, keeping the previous map: %v", msg.Err)},
			isSystem: true,
		})
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		// AI turns render like transcript lines, not meta output.
		isSystem := !strings.HasPrefix(input, "/ai ")
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: isSystem})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	m = m.appendOutput(outputMsg{input: input, lines: m.userTurn(input)})
	return m, nil
}

// userTurn runs the interceptor over the session transcript.
func (m *Model) userTurn(text string) []string {
	chat := append(m.chats[m.session], types.Message{Role: types.RoleUser, Text: text})
	chat, result, err := m.engine.Intercept(m.session, chat)
	m.chats[m.session] = chat
	if err != nil {
		return []string{fmt.Sprintf("Turn failed: %v", err)}
	}
	m.turns++

	var lines []string
	if result.UserText != text {
		lines = append(lines, "You: "+result.UserText)
	}
	lines = append(lines, injectionLines(result)...)
	if m.trace {
		lines = append(lines, formatTrace(result)...)
	}
	return lines
}

// aiTurn runs an AI-only turn.
func (m *Model) aiTurn(text string) []string {
	result, err := m.engine.Step(types.Turn{
		SessionID: m.session,
		AI:        &types.Message{Role: types.RoleAssistant, Text: text},
	})
	m.chats[m.session] = append(m.chats[m.session], types.Message{Role: types.RoleAssistant, Text: result.AIText})
	if err != nil {
		return []string{fmt.Sprintf("Turn failed: %v", err)}
	}
	m.turns++

	lines := []string{"AI: " + result.AIText}
	lines = append(lines, injectionLines(result)...)
	if m.trace {
		lines = append(lines, formatTrace(result)...)
	}
	return lines
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. A single word longer than width stays on its own line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/ai":
		if arg == "" {
			return []string{"Usage: /ai <message>"}, false
		}
		return m.aiTurn(arg), false

	case "/session":
		if arg == "" {
			return []string{"Session: " + m.session}, false
		}
		m.session = arg
		return []string{fmt.Sprintf("Switched to session %s.", arg)}, false

	case "/new":
		m.session = uuid.NewString()
		return []string{fmt.Sprintf("Started session %s.", m.session)}, false

	case "/state":
		return m.cmdState(), false

	case "/where":
		return m.cmdWhere(), false

	case "/sticky", "/autoconfirm", "/enable":
		return m.cmdToggle(cmd), false

	case "/clearall":
		if err := m.engine.ClearAll(); err != nil {
			return []string{fmt.Sprintf("Clear failed: %v", err)}, false
		}
		m.chats = map[string][]types.Message{}
		return []string{"All sessions cleared."}, false

	case "/export":
		return m.cmdExport(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdToggle(cmd string) []string {
	s := m.engine.Settings()
	var name string
	var on bool
	switch cmd {
	case "/sticky":
		s.StickyLocation = !s.StickyLocation
		name, on = "Sticky location", s.StickyLocation
	case "/autoconfirm":
		s.AutoConfirm = !s.AutoConfirm
		name, on = "Auto-confirm", s.AutoConfirm
	case "/enable":
		s.Enabled = !s.Enabled
		name, on = "Navigator", s.Enabled
	}
	m.engine.SetSettings(s)
	if on {
		return []string{name + " enabled."}
	}
	return []string{name + " disabled."}
}

func (m *Model) cmdExport(name string) []string {
	if name == "" {
		name = m.session
	}

	s, err := m.engine.Session(m.session)
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	data, err := save.Save(m.session, s)
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}

	if err := os.MkdirAll(m.exportDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}

	path := filepath.Join(m.exportDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}

	return []string{fmt.Sprintf("Session exported to %s.", path)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"Chat:",
		"  <text>          — Send a user message (tags: [confirm], [clear location], [X, Y])",
		"  /ai <text>      — Send an AI message (tag: [propose_location: X, Y])",
		"",
		"Sessions:",
		"  /session [id]   — Show or switch the session",
		"  /new            — Start a fresh session",
		"  /state          — Dump the session state",
		"  /where          — Show the cached location analysis",
		"  /export [name]  — Write a session snapshot",
		"  /clearall       — Drop every stored session",
		"",
		"Settings:",
		"  /enable         — Toggle the navigator",
		"  /sticky         — Toggle sticky location",
		"  /autoconfirm    — Toggle auto-confirm",
		"",
		"System:",
		"  /trace          — Toggle event trace output",
		"  /help           — Show this help",
		"  /quit           — Exit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

func (m *Model) cmdState() []string {
	s, err := m.engine.Session(m.session)
	if err != nil {
		return []string{fmt.Sprintf("State failed: %v", err)}
	}
	output := []string{
		"Session: " + m.session,
		"Phase: " + state.Phase(s),
		"Location: " + cli.FormatPoint(s.CurrentLocation),
	}
	if s.ConfirmationPending {
		output = append(output, "Proposed: "+cli.FormatPoint(s.ProposedLocation))
	}
	return output
}

func (m *Model) cmdWhere() []string {
	s, err := m.engine.Session(m.session)
	if err != nil {
		return []string{fmt.Sprintf("Lookup failed: %v", err)}
	}
	if s.LastAnalysis == "" {
		return []string{"No location set."}
	}
	return []string{s.LastAnalysis}
}

func worldSummary(w *types.World) string {
	if w == nil {
		return "No map data loaded."
	}
	st := loader.Stats(w)
	return fmt.Sprintf("World %s: %d entries (%d regions, %d paths, %d landmarks).",
		w.Source, st.Entries, st.Regions, st.Paths, st.Landmarks)
}

func injectionLines(result types.Result) []string {
	if result.Injection == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(result.Injection, "\n") {
		lines = append(lines, injectPrefix+line)
	}
	return lines
}

func formatTrace(result types.Result) []string {
	lines := []string{fmt.Sprintf("[trace] Phase: %s", result.Phase)}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
