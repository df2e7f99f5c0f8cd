// Package save implements JSON serialization and deserialization of
// session state snapshots.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/worldnav/engine/state"
	"github.com/nathoo/worldnav/types"
)

// FormatVersion is written into every snapshot.
const FormatVersion = 1

// SaveData is the JSON-serializable snapshot format.
type SaveData struct {
	Version             int          `json:"version"`
	Session             string       `json:"session"`
	CurrentLocation     *types.Point `json:"current_location,omitempty"`
	ProposedLocation    *types.Point `json:"proposed_location,omitempty"`
	ConfirmationPending bool         `json:"confirmation_pending"`
	LastAnalysis        string       `json:"last_analysis,omitempty"`
}

// Save serializes a session to JSON bytes.
func Save(sessionID string, s types.SessionState) ([]byte, error) {
	data := SaveData{
		Version:             FormatVersion,
		Session:             sessionID,
		CurrentLocation:     s.CurrentLocation,
		ProposedLocation:    s.ProposedLocation,
		ConfirmationPending: s.ConfirmationPending,
		LastAnalysis:        s.LastAnalysis,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData and checks the session
// invariants.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version > FormatVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", sd.Version, FormatVersion)
	}
	if err := state.Validate(sd.State()); err != nil {
		return nil, fmt.Errorf("snapshot for session %q: %w", sd.Session, err)
	}
	return &sd, nil
}

// State returns the session state held by the snapshot.
func (sd *SaveData) State() types.SessionState {
	return state.Clone(types.SessionState{
		CurrentLocation:     sd.CurrentLocation,
		ProposedLocation:    sd.ProposedLocation,
		ConfirmationPending: sd.ConfirmationPending,
		LastAnalysis:        sd.LastAnalysis,
	})
}
