// Package engine provides the Step() orchestrator that wires together tag
// parsing, session transitions, location resolution and persistence into
// a single turn.
package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nathoo/worldnav/engine/parser"
	"github.com/nathoo/worldnav/engine/resolve"
	"github.com/nathoo/worldnav/engine/state"
	"github.com/nathoo/worldnav/types"
)

// InstructionText is always part of an injected message. It tells the AI
// how to propose a move.
const InstructionText = "[WorldNavigator: When the player moves to a new place, propose the new map coordinates with [propose_location: X, Y]. " +
	"The player confirms with [confirm] or clears with [clear location].]"

// pendingNote announces an unconfirmed proposal.
const pendingNote = "[WorldNavigator: Proposed location (%s, %s) is awaiting the player's confirmation.]"

// Event types reported in Result.Events.
const (
	EventSessionLoaded     = "session_loaded"
	EventLocationProposed  = "location_proposed"
	EventLocationConfirmed = "location_confirmed"
	EventLocationSet       = "location_set"
	EventLocationCleared   = "location_cleared"
	EventProposalRejected  = "proposal_rejected"
)

// Store persists session snapshots.
type Store interface {
	Load(sessionID string) (types.SessionState, bool, error)
	Save(sessionID string, s types.SessionState) error
	ClearAll() error
}

// Engine holds the world, the settings and the active session. It
// processes one turn at a time.
type Engine struct {
	mu       sync.Mutex
	resolver *resolve.Resolver
	settings types.Settings
	store    Store
	log      *zap.Logger

	activeID  string
	active    types.SessionState
	hasActive bool
	dirty     bool // active state has not reached the store yet
}

// New creates an engine. world may be nil (nothing loaded) and store may
// be nil (no persistence).
func New(world *types.World, scale resolve.Scale, settings types.Settings, store Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		resolver: resolve.New(world, scale),
		settings: settings,
		store:    store,
		log:      log,
	}
}

// SetWorld swaps the world used for new analyses. Cached analyses are
// left as they are.
func (e *Engine) SetWorld(world *types.World) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolver = resolve.New(world, e.resolver.Scale)
}

// World returns the loaded world, or nil.
func (e *Engine) World() *types.World {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.World
}

// Describe resolves p against the current world.
func (e *Engine) Describe(p types.Point) string {
	e.mu.Lock()
	r := e.resolver
	e.mu.Unlock()
	return r.Describe(p)
}

// Settings returns the current settings.
func (e *Engine) Settings() types.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetSettings replaces the settings.
func (e *Engine) SetSettings(s types.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
}

// ActiveSession returns the id of the session currently held in memory.
func (e *Engine) ActiveSession() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeID
}

// Session returns the state of sessionID without making it active.
func (e *Engine) Session(sessionID string) (types.SessionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasActive && sessionID == e.activeID {
		return state.Clone(e.active), nil
	}
	if e.store == nil {
		return state.NewSession(), nil
	}
	s, ok, err := e.store.Load(sessionID)
	if err != nil {
		return types.SessionState{}, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if !ok {
		return state.NewSession(), nil
	}
	return s, nil
}

// ClearAll drops every stored session and resets the active one.
func (e *Engine) ClearAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		if err := e.store.ClearAll(); err != nil {
			return fmt.Errorf("clearing sessions: %w", err)
		}
	}
	e.active = state.NewSession()
	e.dirty = false
	e.log.Info("all sessions cleared")
	return nil
}

// Step processes one turn and returns the result. The returned error is
// non-nil only when the session could not be loaded or persisted; in the
// latter case the in-memory state already reflects the turn.
func (e *Engine) Step(turn types.Turn) (types.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result types.Result
	if turn.AI != nil {
		result.AIText = turn.AI.Text
	}
	if turn.User != nil {
		result.UserText = turn.User.Text
	}

	// 0. Disabled: pass messages through untouched.
	if !e.settings.Enabled {
		return result, nil
	}

	// 1. Switch sessions if the host moved to another conversation.
	if evt, err := e.activate(turn.SessionID); err != nil {
		return result, err
	} else if evt != nil {
		result.Events = append(result.Events, *evt)
	}

	s := e.active
	before := state.Clone(s)
	fresh := false
	proposedThisTurn := false

	// 2. AI proposal.
	if turn.AI != nil {
		tags := parser.ParseAI(turn.AI.Text)
		result.AIText = tags.Text
		if tags.Proposal != nil {
			p := *tags.Proposal
			proposedThisTurn = true
			if e.settings.AutoConfirm {
				s = state.Locate(s, p, e.resolver.Describe(p))
				fresh = true
				result.Events = append(result.Events, pointEvent(EventLocationConfirmed, p))
			} else if next, changed := state.Propose(s, p); changed {
				s = next
				result.Events = append(result.Events, pointEvent(EventLocationProposed, p))
			}
		}
	}

	// 3. User tokens: clear, then confirm, then explicit coordinate, then
	// implicit rejection of an older proposal.
	if turn.User != nil {
		tags := parser.ParseUser(turn.User.Text)
		result.UserText = tags.Text
		switch {
		case tags.Clear:
			s = state.Clear()
			result.Events = append(result.Events, types.Event{Type: EventLocationCleared})

		case tags.Confirm && s.ConfirmationPending:
			p := *s.ProposedLocation
			s, _ = state.Confirm(s, e.resolver.Describe(p))
			fresh = true
			result.Events = append(result.Events, pointEvent(EventLocationConfirmed, p))

		case tags.Coordinate != nil:
			p := *tags.Coordinate
			s = state.Locate(s, p, e.resolver.Describe(p))
			fresh = true
			result.Events = append(result.Events, pointEvent(EventLocationSet, p))

		case !tags.Recognized() && s.ConfirmationPending && !proposedThisTurn:
			p := *s.ProposedLocation
			s, _ = state.Reject(s)
			result.Events = append(result.Events, pointEvent(EventProposalRejected, p))
		}
	}

	e.active = s
	result.State = state.Clone(s)
	result.Phase = state.Phase(s)
	result.Injection = compose(s, fresh, e.settings.StickyLocation)

	for _, evt := range result.Events {
		e.logEvent(evt)
	}

	// 4. Commit before the next turn can be accepted. A snapshot that
	// failed to save earlier is retried even if this turn changed nothing.
	if e.dirty || !state.Equal(before, s) {
		if err := e.persist(); err != nil {
			return result, err
		}
	}

	return result, nil
}

// persist saves the active state, leaving it dirty on failure.
func (e *Engine) persist() error {
	if e.store == nil {
		e.dirty = false
		return nil
	}
	if err := e.store.Save(e.activeID, e.active); err != nil {
		e.dirty = true
		e.log.Error("persisting session failed", zap.String("session", e.activeID), zap.Error(err))
		return fmt.Errorf("persisting session %s: %w", e.activeID, err)
	}
	e.dirty = false
	return nil
}

// Intercept runs a turn over the host's chat history. It picks the most
// recent AI and user messages, strips recognized tags from them in place
// and inserts the injected system message right before the last user
// message. Without a user message the chat is returned unchanged. When the
// navigator is disabled the texts pass through as they are.
func (e *Engine) Intercept(sessionID string, chat []types.Message) ([]types.Message, types.Result, error) {
	userIdx, aiIdx := -1, -1
	for i := len(chat) - 1; i >= 0 && (userIdx < 0 || aiIdx < 0); i-- {
		switch chat[i].Role {
		case types.RoleUser:
			if userIdx < 0 {
				userIdx = i
			}
		case types.RoleAssistant:
			if aiIdx < 0 {
				aiIdx = i
			}
		}
	}
	if userIdx < 0 {
		return chat, types.Result{}, nil
	}

	turn := types.Turn{SessionID: sessionID, User: &types.Message{Role: types.RoleUser, Text: chat[userIdx].Text}}
	if aiIdx >= 0 {
		turn.AI = &types.Message{Role: types.RoleAssistant, Text: chat[aiIdx].Text}
	}

	result, err := e.Step(turn)
	if err != nil {
		return chat, result, err
	}

	chat[userIdx].Text = result.UserText
	if aiIdx >= 0 {
		chat[aiIdx].Text = result.AIText
	}
	if result.Injection != "" {
		chat = slices.Insert(chat, userIdx, types.Message{Role: types.RoleSystem, Text: result.Injection})
	}
	return chat, result, nil
}

// activate makes sessionID the active session, replacing the in-memory
// state with the persisted one. It returns an event when a switch happened.
func (e *Engine) activate(sessionID string) (*types.Event, error) {
	if e.hasActive && sessionID == e.activeID {
		return nil, nil
	}
	// The outgoing session must be stored before it is dropped.
	if e.dirty {
		if err := e.persist(); err != nil {
			return nil, err
		}
	}

	s := state.NewSession()
	restored := false
	if e.store != nil {
		loaded, ok, err := e.store.Load(sessionID)
		if err != nil {
			return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
		}
		if ok {
			s, restored = loaded, true
		}
	}

	e.log.Debug("session activated",
		zap.String("session", sessionID),
		zap.String("previous", e.activeID),
		zap.Bool("restored", restored))

	e.activeID, e.active, e.hasActive = sessionID, s, true
	return &types.Event{
		Type: EventSessionLoaded,
		Data: map[string]any{"session": sessionID, "restored": restored},
	}, nil
}

// compose builds the injected message. It returns "" when nothing beyond
// the instruction qualifies.
func compose(s types.SessionState, fresh, sticky bool) string {
	parts := []string{InstructionText}
	if s.ConfirmationPending && s.ProposedLocation != nil {
		parts = append(parts, fmt.Sprintf(pendingNote,
			formatCoord(s.ProposedLocation.X), formatCoord(s.ProposedLocation.Y)))
	}
	if s.LastAnalysis != "" && (fresh || sticky) {
		parts = append(parts, s.LastAnalysis)
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pointEvent(typ string, p types.Point) types.Event {
	return types.Event{Type: typ, Data: map[string]any{"x": p.X, "y": p.Y}}
}

func (e *Engine) logEvent(evt types.Event) {
	fields := []zap.Field{zap.String("session", e.activeID), zap.String("event", evt.Type)}
	if x, ok := evt.Data["x"].(float64); ok {
		fields = append(fields, zap.Float64("x", x))
	}
	if y, ok := evt.Data["y"].(float64); ok {
		fields = append(fields, zap.Float64("y", y))
	}
	if evt.Type == EventSessionLoaded {
		e.log.Debug("navigator event", fields...)
		return
	}
	e.log.Info("navigator event", fields...)
}
