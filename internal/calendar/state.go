package calendar

import (
	"sync"
	"time"
)

// ConnectionState is the single source of truth for the calendar connection.
// It is only ever read as a whole snapshot and written as whole-field
// replacements, so readers never observe a half-applied transition.
type ConnectionState struct {
	IsConnected          bool           `json:"isConnected"`
	IsSyncing            bool           `json:"isSyncing"`
	IsCheckingConnection bool           `json:"isCheckingConnection"`
	Calendars            []CalendarInfo `json:"calendars"`
	SyncStatus           SyncStatus     `json:"syncStatus"`
	LastSyncAt           *time.Time     `json:"lastSyncAt,omitempty"`
}

// PersistedState is the durable subset of ConnectionState. Transient flags
// and the calendar list are recomputed by a check on every session start.
type PersistedState struct {
	IsConnected bool       `json:"isConnected"`
	SyncStatus  SyncStatus `json:"syncStatus"`
	LastSyncAt  *time.Time `json:"lastSyncAt,omitempty"`
}

// StateManager owns the process-wide ConnectionState behind a mutex.
type StateManager struct {
	mu    sync.Mutex
	state ConnectionState
}

// NewStateManager creates a manager holding the all-false/empty defaults.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// Snapshot returns a copy of the current state. The calendars slice and the
// timestamp are copied so callers cannot mutate the shared state.
func (m *StateManager) Snapshot() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

func (m *StateManager) copyLocked() ConnectionState {
	out := m.state
	if m.state.Calendars != nil {
		out.Calendars = append([]CalendarInfo(nil), m.state.Calendars...)
	}
	if m.state.LastSyncAt != nil {
		t := *m.state.LastSyncAt
		out.LastSyncAt = &t
	}
	return out
}

// Restore loads the persisted subset at startup. Transient flags stay false
// and the calendar list stays empty until the first check completes.
func (m *StateManager) Restore(p PersistedState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsConnected = p.IsConnected
	m.state.SyncStatus = p.SyncStatus
	if p.LastSyncAt != nil {
		t := *p.LastSyncAt
		m.state.LastSyncAt = &t
	} else {
		m.state.LastSyncAt = nil
	}
}

// ApplyCheck writes the outcome of a successful connection check as one
// transition: connected iff the list is non-empty, the new calendar snapshot,
// and the derived sync status.
func (m *StateManager) ApplyCheck(calendars []CalendarInfo, status SyncStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsConnected = len(calendars) > 0
	m.state.Calendars = append([]CalendarInfo(nil), calendars...)
	m.state.SyncStatus = status
}

// ResetDisconnected is the failed-check transition: disconnected, empty
// calendars, zeroed sync status. The last sync timestamp is kept; it records
// history, not connectivity.
func (m *StateManager) ResetDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsConnected = false
	m.state.Calendars = nil
	m.state.SyncStatus = SyncStatus{}
}

// Reset returns the whole state to process-start defaults. Only disconnect
// uses it.
func (m *StateManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ConnectionState{}
}

// SetConnected optimistically flips the connection flag while a flow
// completes. A following check reconciles it.
func (m *StateManager) SetConnected(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsConnected = v
}

// BeginCheck attempts to take the at-most-one-check-in-flight guard. It
// returns false when a check is already running, in which case the caller
// must not proceed.
func (m *StateManager) BeginCheck() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsCheckingConnection {
		return false
	}
	m.state.IsCheckingConnection = true
	return true
}

// EndCheck releases the check guard.
func (m *StateManager) EndCheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsCheckingConnection = false
}

// BeginSync marks a sync as in flight. Syncs are not de-duplicated; the flag
// exists for the dashboard, not for mutual exclusion.
func (m *StateManager) BeginSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsSyncing = true
}

// EndSync clears the sync flag.
func (m *StateManager) EndSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsSyncing = false
}

// MarkSynced stamps a successful sync. The timestamp never moves backwards.
func (m *StateManager) MarkSynced(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.LastSyncAt != nil && t.Before(*m.state.LastSyncAt) {
		return
	}
	stamped := t
	m.state.LastSyncAt = &stamped
}

// Persisted returns the durable subset of the current state.
func (m *StateManager) Persisted() PersistedState {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := PersistedState{
		IsConnected: m.state.IsConnected,
		SyncStatus:  m.state.SyncStatus,
	}
	if m.state.LastSyncAt != nil {
		t := *m.state.LastSyncAt
		p.LastSyncAt = &t
	}
	return p
}
