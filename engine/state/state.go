// Package state holds the per-session navigator record and its
// transitions. Every transition takes a SessionState by value and returns
// the next one; nothing here keeps hidden state between calls.
package state

import (
	"errors"

	"github.com/nathoo/worldnav/types"
)

// Phases of a session.
const (
	PhaseIdle    = "idle"
	PhaseLocated = "located"
	PhasePending = "proposal_pending"
)

// Invariant violations reported by Validate.
var (
	ErrPendingWithoutProposal  = errors.New("confirmation pending without a proposed location")
	ErrAnalysisWithoutLocation = errors.New("cached analysis without a current location")
)

// NewSession returns a fresh idle session.
func NewSession() types.SessionState {
	return types.SessionState{}
}

// Phase derives the session phase from its fields.
func Phase(s types.SessionState) string {
	switch {
	case s.ConfirmationPending:
		return PhasePending
	case s.CurrentLocation != nil:
		return PhaseLocated
	default:
		return PhaseIdle
	}
}

// Validate checks the session invariants.
func Validate(s types.SessionState) error {
	if s.ConfirmationPending && s.ProposedLocation == nil {
		return ErrPendingWithoutProposal
	}
	if s.LastAnalysis != "" && s.CurrentLocation == nil {
		return ErrAnalysisWithoutLocation
	}
	return nil
}

// Propose records p as the pending proposal. It reports false when the
// same proposal is already pending.
func Propose(s types.SessionState, p types.Point) (types.SessionState, bool) {
	if s.ConfirmationPending && s.ProposedLocation != nil && *s.ProposedLocation == p {
		return s, false
	}
	s.ProposedLocation = clonePoint(&p)
	s.ConfirmationPending = true
	return s, true
}

// Confirm promotes the pending proposal to the current location. analysis
// must be the resolver output for the proposed point. It reports false when
// nothing is pending.
func Confirm(s types.SessionState, analysis string) (types.SessionState, bool) {
	if !s.ConfirmationPending || s.ProposedLocation == nil {
		return s, false
	}
	return Locate(s, *s.ProposedLocation, analysis), true
}

// Locate sets the current location directly and drops any proposal.
func Locate(s types.SessionState, p types.Point, analysis string) types.SessionState {
	s.CurrentLocation = clonePoint(&p)
	s.ProposedLocation = nil
	s.ConfirmationPending = false
	s.LastAnalysis = analysis
	return s
}

// Reject drops a pending proposal and keeps any prior location. It
// reports false when nothing was pending.
func Reject(s types.SessionState) (types.SessionState, bool) {
	if !s.ConfirmationPending && s.ProposedLocation == nil {
		return s, false
	}
	s.ProposedLocation = nil
	s.ConfirmationPending = false
	return s, true
}

// Clear resets the session to idle.
func Clear() types.SessionState {
	return NewSession()
}

// Equal reports whether two sessions hold the same values.
func Equal(a, b types.SessionState) bool {
	return pointEqual(a.CurrentLocation, b.CurrentLocation) &&
		pointEqual(a.ProposedLocation, b.ProposedLocation) &&
		a.ConfirmationPending == b.ConfirmationPending &&
		a.LastAnalysis == b.LastAnalysis
}

// Clone returns a deep copy so callers never share point pointers.
func Clone(s types.SessionState) types.SessionState {
	s.CurrentLocation = clonePoint(s.CurrentLocation)
	s.ProposedLocation = clonePoint(s.ProposedLocation)
	return s
}

func clonePoint(p *types.Point) *types.Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func pointEqual(a, b *types.Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
