// Package cli provides a line-oriented host simulator for the navigator:
// it keeps a chat transcript per session, routes each user line through
// the engine's interceptor and dispatches meta-commands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/worldnav/engine"
	"github.com/nathoo/worldnav/engine/save"
	"github.com/nathoo/worldnav/engine/state"
	"github.com/nathoo/worldnav/loader"
	"github.com/nathoo/worldnav/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Session   string
	ExportDir string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	chats map[string][]types.Message
}

// New creates a CLI wired to the given engine. An empty session gets a
// fresh id.
func New(eng *engine.Engine, session string) *CLI {
	if session == "" {
		session = uuid.NewString()
	}
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:    eng,
		In:        os.Stdin,
		Out:       os.Stdout,
		Session:   session,
		ExportDir: filepath.Join(home, ".worldnav", "exports"),
		chats:     map[string][]types.Message{},
	}
}

// Run starts the loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	if c.chats == nil {
		c.chats = map[string][]types.Message{}
	}
	c.printWorld()
	c.printSystem(fmt.Sprintf("Session %s. Type /help for commands.", c.Session))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		c.userTurn(input)
	}
}

// userTurn appends a user message and runs the interceptor over the
// session's transcript.
func (c *CLI) userTurn(text string) {
	chat := append(c.chats[c.Session], types.Message{Role: types.RoleUser, Text: text})
	chat, result, err := c.Engine.Intercept(c.Session, chat)
	c.chats[c.Session] = chat
	if err != nil {
		c.printSystem(fmt.Sprintf("Turn failed: %v", err))
		return
	}

	if result.UserText != text {
		c.printLine("You: " + result.UserText)
	}
	c.printInjection(result)
	if c.Trace {
		c.printTrace(result)
	}
}

// aiTurn runs an AI-only turn and records the stripped message.
func (c *CLI) aiTurn(text string) {
	result, err := c.Engine.Step(types.Turn{
		SessionID: c.Session,
		AI:        &types.Message{Role: types.RoleAssistant, Text: text},
	})
	c.chats[c.Session] = append(c.chats[c.Session], types.Message{Role: types.RoleAssistant, Text: result.AIText})
	if err != nil {
		c.printSystem(fmt.Sprintf("Turn failed: %v", err))
		return
	}

	c.printLine("AI: " + result.AIText)
	c.printInjection(result)
	if c.Trace {
		c.printTrace(result)
	}
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/ai":
		if arg == "" {
			c.printSystem("Usage: /ai <message>")
			return false
		}
		c.aiTurn(arg)

	case "/session":
		if arg == "" {
			c.printSystem(fmt.Sprintf("Session: %s", c.Session))
			return false
		}
		c.Session = arg
		c.printSystem(fmt.Sprintf("Switched to session %s.", arg))

	case "/new":
		c.Session = uuid.NewString()
		c.printSystem(fmt.Sprintf("Started session %s.", c.Session))

	case "/state":
		c.cmdState()

	case "/where":
		c.cmdWhere()

	case "/sticky", "/autoconfirm", "/enable":
		c.cmdToggle(cmd)

	case "/clearall":
		if err := c.Engine.ClearAll(); err != nil {
			c.printSystem(fmt.Sprintf("Clear failed: %v", err))
			return false
		}
		c.chats = map[string][]types.Message{}
		c.printSystem("All sessions cleared.")

	case "/export":
		c.cmdExport(arg)

	case "/help":
		c.cmdHelp()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdToggle(cmd string) {
	s := c.Engine.Settings()
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
	c.Engine.SetSettings(s)
	if on {
		c.printSystem(name + " enabled.")
	} else {
		c.printSystem(name + " disabled.")
	}
}

func (c *CLI) cmdExport(name string) {
	if name == "" {
		name = c.Session
	}

	s, err := c.Engine.Session(c.Session)
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	data, err := save.Save(c.Session, s)
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.ExportDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}

	path := filepath.Join(c.ExportDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Session exported to %s.", path))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Chat:",
		"  <text>            — Send a user message (tags: [confirm], [clear location], [X, Y])",
		"  /ai <text>        — Send an AI message (tag: [propose_location: X, Y])",
		"",
		"Sessions:",
		"  /session [id]     — Show or switch the session",
		"  /new              — Start a fresh session",
		"  /state            — Dump the session state",
		"  /where            — Show the cached location analysis",
		"  /export [name]    — Write a session snapshot",
		"  /clearall         — Drop every stored session",
		"",
		"Settings:",
		"  /enable           — Toggle the navigator",
		"  /sticky           — Toggle sticky location",
		"  /autoconfirm      — Toggle auto-confirm",
		"",
		"System:",
		"  /trace            — Toggle event trace output",
		"  /help             — Show this help",
		"  /quit             — Exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s, err := c.Engine.Session(c.Session)
	if err != nil {
		c.printSystem(fmt.Sprintf("State failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session: %s", c.Session))
	c.printSystem(fmt.Sprintf("Phase: %s", state.Phase(s)))
	c.printSystem(fmt.Sprintf("Location: %s", FormatPoint(s.CurrentLocation)))
	if s.ConfirmationPending {
		c.printSystem(fmt.Sprintf("Proposed: %s", FormatPoint(s.ProposedLocation)))
	}
	settings := c.Engine.Settings()
	c.printSystem(fmt.Sprintf("Settings: enabled=%t sticky=%t autoconfirm=%t",
		settings.Enabled, settings.StickyLocation, settings.AutoConfirm))
}

func (c *CLI) cmdWhere() {
	s, err := c.Engine.Session(c.Session)
	if err != nil {
		c.printSystem(fmt.Sprintf("Lookup failed: %v", err))
		return
	}
	if s.LastAnalysis == "" {
		c.printSystem("No location set.")
		return
	}
	c.printLine(s.LastAnalysis)
}

func (c *CLI) printWorld() {
	w := c.Engine.World()
	if w == nil {
		c.printSystem("No map data loaded.")
		return
	}
	st := loader.Stats(w)
	c.printSystem(fmt.Sprintf("World %s: %d entries (%d regions, %d paths, %d landmarks).",
		w.Source, st.Entries, st.Regions, st.Paths, st.Landmarks))
}

func (c *CLI) printInjection(result types.Result) {
	if result.Injection == "" {
		return
	}
	for _, line := range strings.Split(result.Injection, "\n") {
		c.printLine("  | " + line)
	}
}

func (c *CLI) printTrace(result types.Result) {
	c.printSystem(fmt.Sprintf("[trace] Phase: %s", result.Phase))
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

// FormatPoint renders an optional point for status output.
func FormatPoint(p *types.Point) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
