package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/worldnav/cli"
	"github.com/nathoo/worldnav/engine/state"
	"github.com/nathoo/worldnav/types"
)

// shortID trims long session ids (uuids) to their first block.
// "3f2a9c1e-77b0-..." -> "3f2a9c1e".
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	if head, _, ok := strings.Cut(id, "-"); ok && head != "" {
		return head
	}
	return id[:12]
}

// settingsFlags lists the active toggles, "off" when the navigator is
// disabled.
func settingsFlags(s types.Settings) string {
	if !s.Enabled {
		return "off"
	}
	var flags []string
	if s.StickyLocation {
		flags = append(flags, "sticky")
	}
	if s.AutoConfirm {
		flags = append(flags, "auto")
	}
	if len(flags) == 0 {
		return "on"
	}
	return strings.Join(flags, ",")
}

// renderStatusBar produces a full-width inverted status line showing
// session, phase, location, settings and turn count.
func (m Model) renderStatusBar() string {
	phase := "?"
	loc := "none"
	if s, err := m.engine.Session(m.session); err == nil {
		phase = state.Phase(s)
		loc = cli.FormatPoint(s.CurrentLocation)
		if s.ConfirmationPending {
			loc += " -> " + cli.FormatPoint(s.ProposedLocation)
		}
	}

	left := fmt.Sprintf(" %s | %s | Loc: %s", shortID(m.session), phase, loc)
	right := fmt.Sprintf("Nav: %s | T:%d ", settingsFlags(m.engine.Settings()), m.turns)

	// Drop the settings if they don't fit.
	if lipgloss.Width(left)+lipgloss.Width(right)+2 >= m.width {
		right = fmt.Sprintf("T:%d ", m.turns)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
