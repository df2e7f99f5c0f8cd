// Package tui provides a Bubble Tea host simulator for the world navigator:
// a scrolling chat transcript, a status bar with the session's phase and
// location, and an input line with history.
package tui

// History keeps recent input lines with cursor-based navigation.
// Re-entering an older line moves it to the newest position.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{max: max, cursor: -1}
}

// Len reports the number of stored lines.
func (h *History) Len() int { return len(h.entries) }

// Push records a line, moving an existing copy to the end.
func (h *History) Push(line string) {
	for i, e := range h.entries {
		if e == line {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps to the older line, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	n := len(h.entries)
	if n == 0 {
		return "", false
	}
	switch {
	case h.cursor < 0:
		h.cursor = n - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps to the newer line. Stepping past the newest returns false
// and leaves navigation.
func (h *History) Next() (string, bool) {
	if h.cursor < 0 {
		return "", false
	}
	if h.cursor++; h.cursor < len(h.entries) {
		return h.entries[h.cursor], true
	}
	h.cursor = -1
	return "", false
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() { h.cursor = -1 }
