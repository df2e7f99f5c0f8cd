package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/worldnav/engine"
	"github.com/nathoo/worldnav/engine/resolve"
	"github.com/nathoo/worldnav/engine/save"
	"github.com/nathoo/worldnav/store"
	"github.com/nathoo/worldnav/types"
)

const fortInside = "[LocationAnalysis: PlayerLocation={(5, 5)}, ContainingRegions={Fort}, NearbyPOIs={None}]"

// testWorld returns a one-region world for CLI testing.
func testWorld() *types.World {
	return &types.World{
		Source: "test",
		Entries: []types.Entry{{
			ID:       "0",
			Name:     "Fort",
			Boundary: []types.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		}},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	eng := engine.New(testWorld(), resolve.DefaultScale(), types.Settings{Enabled: true}, store.NewMemory(), nil)
	var out bytes.Buffer
	c := &CLI{
		Engine:    eng,
		In:        strings.NewReader(input),
		Out:       &out,
		Session:   "chat-1",
		ExportDir: t.TempDir(),
	}
	return c, &out
}

func TestCLI_Banner(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[World test: 1 entries (1 regions, 0 paths, 0 landmarks).]") {
		t.Errorf("expected world summary, got:\n%s", output)
	}
	if !strings.Contains(output, "Session chat-1.") {
		t.Error("expected session banner")
	}
	if !strings.Contains(output, "Goodbye.") {
		t.Error("expected goodbye message")
	}
}

func TestCLI_NoWorld(t *testing.T) {
	eng := engine.New(nil, resolve.DefaultScale(), types.Settings{Enabled: true}, nil, nil)
	var out bytes.Buffer
	c := &CLI{Engine: eng, In: strings.NewReader("[1, 2]\n"), Out: &out, Session: "s"}
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[No map data loaded.]") {
		t.Error("expected no-world banner")
	}
	if !strings.Contains(output, resolve.NoWorldMessage) {
		t.Error("expected sentinel analysis to be injected")
	}
}

func TestCLI_ProposeAndConfirm(t *testing.T) {
	c, out := newTestCLI(t, "/ai You reach the fort. [propose_location: 5, 5]\n[confirm] I enter\n/where\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{
		"AI: You reach the fort.",
		"  | [WorldNavigator: Proposed location (5, 5) is awaiting the player's confirmation.]",
		"You: I enter",
		"  | " + fortInside,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}

	chat := c.chats["chat-1"]
	if len(chat) != 3 {
		t.Fatalf("expected 3 transcript messages, got %d", len(chat))
	}
	if chat[1].Role != types.RoleSystem {
		t.Errorf("expected injected system message before the user message, got %s", chat[1].Role)
	}
}

func TestCLI_PlainReplyRejects(t *testing.T) {
	c, out := newTestCLI(t, "/ai Go north? [propose_location: 40, 40]\nno thanks\n/state\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[Phase: idle]") {
		t.Errorf("expected proposal rejected, got:\n%s", output)
	}
	if strings.Contains(output, "You: no thanks") {
		t.Error("expected unchanged user text not to be echoed back")
	}
}

func TestCLI_ExplicitCoordinate(t *testing.T) {
	c, out := newTestCLI(t, "I stand at [5, 5]\n/state\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[Location: (5, 5)]") {
		t.Errorf("expected location in state dump, got:\n%s", output)
	}
	if !strings.Contains(output, "[Phase: located]") {
		t.Error("expected located phase")
	}
}

func TestCLI_Toggles(t *testing.T) {
	c, out := newTestCLI(t, "/sticky\n/autoconfirm\n/enable\n/state\n/enable\n")
	c.Run()

	output := out.String()
	for _, want := range []string{
		"[Sticky location enabled.]",
		"[Auto-confirm enabled.]",
		"[Navigator disabled.]",
		"[Settings: enabled=false sticky=true autoconfirm=true]",
		"[Navigator enabled.]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if !c.Engine.Settings().Enabled {
		t.Error("expected navigator re-enabled")
	}
}

func TestCLI_DisabledPassesThrough(t *testing.T) {
	c, out := newTestCLI(t, "/enable\n[confirm] [5, 5]\n/state\n")
	c.Run()

	output := out.String()
	if strings.Contains(output, "You:") {
		t.Error("expected untouched user text while disabled")
	}
	if !strings.Contains(output, "[Phase: idle]") {
		t.Error("expected no state change while disabled")
	}
}

func TestCLI_Sessions(t *testing.T) {
	c, out := newTestCLI(t, "/session a\n[5, 5]\n/session b\n/where\n/session a\n/where\n/session\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[No location set.]") {
		t.Error("expected session b to have no location")
	}
	if strings.Count(output, fortInside) != 2 {
		t.Errorf("expected analysis injected once and shown once for session a, got:\n%s", output)
	}
	if !strings.Contains(output, "[Session: a]") {
		t.Error("expected /session to report the active session")
	}
}

func TestCLI_New(t *testing.T) {
	c, out := newTestCLI(t, "/new\n")
	c.Run()

	if c.Session == "chat-1" || c.Session == "" {
		t.Errorf("expected a fresh session id, got %q", c.Session)
	}
	if !strings.Contains(out.String(), "Started session "+c.Session) {
		t.Error("expected new session message")
	}
}

func TestCLI_Export(t *testing.T) {
	c, out := newTestCLI(t, "[5, 5]\n/export snap\n")
	c.Run()

	if !strings.Contains(out.String(), "Session exported to") {
		t.Fatalf("expected export message, got:\n%s", out.String())
	}
	data, err := os.ReadFile(filepath.Join(c.ExportDir, "snap.json"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		t.Fatalf("invalid export: %v", err)
	}
	if sd.Session != "chat-1" || sd.LastAnalysis != fortInside {
		t.Errorf("unexpected export %+v", sd)
	}
}

func TestCLI_ClearAll(t *testing.T) {
	c, out := newTestCLI(t, "[5, 5]\n/clearall\n/where\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[All sessions cleared.]") {
		t.Error("expected clear confirmation")
	}
	if !strings.Contains(output, "[No location set.]") {
		t.Error("expected location gone after clear")
	}
}

func TestCLI_Trace(t *testing.T) {
	c, out := newTestCLI(t, "/trace\n[5, 5]\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[[trace] Phase: located]") {
		t.Errorf("expected trace phase, got:\n%s", output)
	}
	if !strings.Contains(output, engine.EventLocationSet) {
		t.Error("expected location_set in trace")
	}
}

func TestCLI_ScriptMode(t *testing.T) {
	c, out := newTestCLI(t, "# a comment\n/help\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if strings.Contains(output, "a comment") {
		t.Error("expected comment lines skipped")
	}
	if !strings.Contains(output, "> /help\n") {
		t.Error("expected input echoed after the prompt")
	}
	if !strings.Contains(output, "/autoconfirm") {
		t.Error("expected help text")
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	c, out := newTestCLI(t, "/dance\n/ai\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Unknown command: /dance") {
		t.Error("expected unknown command message")
	}
	if !strings.Contains(output, "Usage: /ai <message>") {
		t.Error("expected /ai usage")
	}
}

func TestFormatPoint(t *testing.T) {
	if got := FormatPoint(nil); got != "none" {
		t.Errorf("FormatPoint(nil) = %q", got)
	}
	if got := FormatPoint(&types.Point{X: 1.5, Y: -2}); got != "(1.5, -2)" {
		t.Errorf("FormatPoint = %q", got)
	}
}
