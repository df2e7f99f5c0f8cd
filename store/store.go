// Package store persists session snapshots. Every Save is a complete
// commit: once it returns nil the snapshot survives a restart.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nathoo/worldnav/engine/save"
	"github.com/nathoo/worldnav/types"
)

// Record is one stored session snapshot.
type Record struct {
	ID        string
	State     types.SessionState
	UpdatedAt time.Time
}

// Memory keeps snapshots in process. It stores the encoded snapshot so
// that it round-trips exactly like the SQLite store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	updated time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

// Load returns the stored session, or false when none exists.
func (m *Memory) Load(sessionID string) (types.SessionState, bool, error) {
	m.mu.Lock()
	e, ok := m.entries[sessionID]
	m.mu.Unlock()
	if !ok {
		return types.SessionState{}, false, nil
	}
	sd, err := save.Load(e.data)
	if err != nil {
		return types.SessionState{}, false, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return sd.State(), true, nil
}

// Save stores a snapshot of s under sessionID.
func (m *Memory) Save(sessionID string, s types.SessionState) error {
	data, err := save.Save(sessionID, s)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sessionID, err)
	}
	m.mu.Lock()
	m.entries[sessionID] = memoryEntry{data: data, updated: m.now().UTC()}
	m.mu.Unlock()
	return nil
}

// List returns every stored session ordered by id.
func (m *Memory) List() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]Record, 0, len(m.entries))
	for id, e := range m.entries {
		sd, err := save.Load(e.data)
		if err != nil {
			return nil, fmt.Errorf("decoding session %s: %w", id, err)
		}
		records = append(records, Record{ID: id, State: sd.State(), UpdatedAt: e.updated})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// ClearAll removes every session.
func (m *Memory) ClearAll() error {
	m.mu.Lock()
	m.entries = map[string]memoryEntry{}
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
