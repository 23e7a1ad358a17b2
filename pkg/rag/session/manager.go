package session

import (
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/store"
)

// Manager owns session lifecycle and state transitions. Every mutation goes
// through here so the transition invariants hold everywhere.
type Manager struct {
	store  *Store
	logger logger.ILogger
}

func NewManager(s *Store, log logger.ILogger) *Manager {
	return &Manager{store: s, logger: log}
}

// Metadata is a partial update applied without changing state.
type Metadata struct {
	Profile          string
	PendingCandidate *store.Candidate
	LastQuery        string
}

// GetOrCreate returns the session for an id, lazily creating a default one.
func (m *Manager) GetOrCreate(sessionID string) *store.Session {
	if session, found := m.store.Get(sessionID); found {
		return session
	}
	session := &store.Session{
		ID:      sessionID,
		State:   store.StateExploring,
		Profile: store.ProfileAdmin,
	}
	m.store.Save(session)
	return session
}

// Lock serializes handling for one session id; see Store.Lock.
func (m *Manager) Lock(sessionID string) func() {
	return m.store.Lock(sessionID)
}

// Transition moves a session to a new state. Changing state counts as
// progress, so the failed-attempts counter is always reset.
func (m *Manager) Transition(sessionID, newState string, document, candidate *store.Candidate) {
	session := m.GetOrCreate(sessionID)

	session.State = newState
	session.FailedAttempts = 0

	switch newState {
	case store.StateDeepReading:
		if document != nil {
			session.ActiveDocument = document
		}
		session.PendingCandidate = nil
	case store.StateAwaitingConfirmation:
		if candidate != nil {
			session.PendingCandidate = candidate
		}
	case store.StateExploring:
		session.ActiveDocument = nil
		session.PendingCandidate = nil
	}

	m.store.Save(session)

	doc := ""
	if session.ActiveDocument != nil {
		doc = session.ActiveDocument.DisplayName
	}
	m.logger.Info("SESSION", "State transition", map[string]interface{}{
		"session_id": sessionID,
		"state":      newState,
		"document":   doc,
	})
}

// MergeMetadata shallow-merges fields into the session without touching state.
func (m *Manager) MergeMetadata(sessionID string, patch Metadata) {
	session := m.GetOrCreate(sessionID)

	if patch.Profile != "" {
		session.Profile = patch.Profile
	}
	if patch.PendingCandidate != nil {
		session.PendingCandidate = patch.PendingCandidate
	}
	if patch.LastQuery != "" {
		session.LastQuery = patch.LastQuery
	}

	m.store.Save(session)
}

// RecordFailure increments the stuck-conversation counter and returns it.
func (m *Manager) RecordFailure(sessionID string) int {
	session := m.GetOrCreate(sessionID)
	session.FailedAttempts++
	m.store.Save(session)
	return session.FailedAttempts
}

// Reset hard-resets a session to exploration, preserving the profile.
func (m *Manager) Reset(sessionID string) {
	profile := store.ProfileAdmin
	if existing, found := m.store.Get(sessionID); found && existing.Profile != "" {
		profile = existing.Profile
	}

	session := &store.Session{
		ID:      sessionID,
		State:   store.StateExploring,
		Profile: profile,
	}
	m.store.Save(session)

	m.logger.Info("SESSION", "Session reset to exploration", map[string]interface{}{
		"session_id": sessionID,
		"profile":    profile,
	})
}
