package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// injectPrefix marks lines the navigator injected into the transcript.
const injectPrefix = "  | "

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleAI = lipgloss.NewStyle().
		Foreground(lipgloss.Color("228"))

	styleYou = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleInjection = lipgloss.NewStyle().
			Foreground(lipgloss.Color("179"))

	styleAnalysis = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindAI
	kindYou
	kindInjection
	kindAnalysis
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, injectPrefix+"[LocationAnalysis"):
		return kindAnalysis
	case strings.HasPrefix(line, injectPrefix):
		return kindInjection
	case strings.HasPrefix(line, "AI:"):
		return kindAI
	case strings.HasPrefix(line, "You:"):
		return kindYou
	case strings.HasPrefix(line, "Turn failed"):
		return kindError
	default:
		return kindNarrative
	}
}

// renderLineKind styles a (possibly wrapped) line by its kind.
func renderLineKind(text string, kind lineKind) string {
	switch kind {
	case kindAI:
		return styleAI.Render(text)
	case kindYou:
		return styleYou.Render(text)
	case kindInjection:
		return styleInjection.Render(text)
	case kindAnalysis:
		return styleAnalysis.Render(text)
	case kindError:
		return styleError.Render(text)
	case kindTrace:
		return styleTrace.Render(text)
	default:
		return styleNarrative.Render(text)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
