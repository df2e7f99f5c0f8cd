// Package types defines the shared data structures for the world navigator.
// This package contains only type definitions: no logic, no methods.
package types

// Point is a position on the abstract map plane.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Entry is one named map feature. Any subset of Boundary, Path and
// Location may be present; each is evaluated independently.
type Entry struct {
	ID       string
	Name     string
	Aliases  []string
	Boundary []Point // closed polygon, last point connects to first
	Path     []Point // open polyline
	Location *Point  // point landmark
}

// World is the imported map description. Entries keep load order so that
// resolver output is reproducible.
type World struct {
	Source  string
	Entries []Entry
}

// Settings is the host-facing switch board.
type Settings struct {
	Enabled        bool
	StickyLocation bool
	AutoConfirm    bool
}

// SessionState is the per-conversation navigator record.
type SessionState struct {
	CurrentLocation     *Point
	ProposedLocation    *Point
	ConfirmationPending bool
	LastAnalysis        string // empty when absent
}

// Message roles as used by the host chat.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of the host's chat history.
type Message struct {
	Role string
	Text string
}

// Turn is one inbound event set: the most recent AI-authored and
// user-authored messages for a session. Either message may be nil.
type Turn struct {
	SessionID string
	AI        *Message
	User      *Message
}

// Event records a state transition that happened during a turn.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single turn.
type Result struct {
	Injection string // system message to insert before the user's turn; empty for none
	AIText    string // AI message text after tag stripping
	UserText  string // user message text after tag stripping
	Phase     string
	Events    []Event
	State     SessionState
}
