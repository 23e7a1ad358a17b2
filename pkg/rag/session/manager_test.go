package session

import (
	"testing"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/store"
)

func newTestManager() *Manager {
	return NewManager(NewStore(), logger.NewNop())
}

func TestGetOrCreateDefaults(t *testing.T) {
	m := newTestManager()

	s := m.GetOrCreate("s1")
	if s.State != store.StateExploring {
		t.Errorf("new session must start exploring, got %s", s.State)
	}
	if s.Profile != store.ProfileAdmin {
		t.Errorf("new session must default to admin profile, got %s", s.Profile)
	}

	again := m.GetOrCreate("s1")
	if again != s {
		t.Error("same id must return the same session")
	}
}

func TestTransitionResetsFailedAttempts(t *testing.T) {
	m := newTestManager()
	m.GetOrCreate("s1")
	m.RecordFailure("s1")
	m.RecordFailure("s1")

	candidate := &store.Candidate{DocumentID: "doc1", DisplayName: "Manual"}
	m.Transition("s1", store.StateAwaitingConfirmation, nil, candidate)

	s := m.GetOrCreate("s1")
	if s.FailedAttempts != 0 {
		t.Errorf("transition must reset failures, got %d", s.FailedAttempts)
	}
	if s.PendingCandidate == nil || s.PendingCandidate.DocumentID != "doc1" {
		t.Error("pending candidate not held while awaiting confirmation")
	}
}

func TestTransitionToDeepReadingClearsPending(t *testing.T) {
	m := newTestManager()
	candidate := &store.Candidate{DocumentID: "doc1"}
	m.Transition("s1", store.StateAwaitingConfirmation, nil, candidate)
	m.Transition("s1", store.StateDeepReading, candidate, nil)

	s := m.GetOrCreate("s1")
	if s.ActiveDocument == nil || s.ActiveDocument.DocumentID != "doc1" {
		t.Error("active document not set")
	}
	if s.PendingCandidate != nil {
		t.Error("pending candidate must be cleared on deep reading")
	}
}

func TestTransitionToExploringClearsWorkbench(t *testing.T) {
	m := newTestManager()
	doc := &store.Candidate{DocumentID: "doc1"}
	m.Transition("s1", store.StateDeepReading, doc, nil)
	m.Transition("s1", store.StateExploring, nil, nil)

	s := m.GetOrCreate("s1")
	if s.ActiveDocument != nil || s.PendingCandidate != nil {
		t.Error("exploration must clear document and candidate")
	}
}

func TestResetPreservesProfile(t *testing.T) {
	m := newTestManager()
	m.GetOrCreate("s1")
	m.MergeMetadata("s1", Metadata{Profile: store.ProfileTechnical})
	m.Transition("s1", store.StateDeepReading, &store.Candidate{DocumentID: "doc1"}, nil)
	m.RecordFailure("s1")

	m.Reset("s1")

	s := m.GetOrCreate("s1")
	if s.State != store.StateExploring {
		t.Errorf("reset must return to exploring, got %s", s.State)
	}
	if s.ActiveDocument != nil || s.PendingCandidate != nil || s.FailedAttempts != 0 {
		t.Error("reset must clear document, candidate and failures")
	}
	if s.Profile != store.ProfileTechnical {
		t.Errorf("reset must preserve profile, got %s", s.Profile)
	}
}

func TestMergeMetadataDoesNotChangeState(t *testing.T) {
	m := newTestManager()
	m.Transition("s1", store.StateDeepReading, &store.Candidate{DocumentID: "doc1"}, nil)

	m.MergeMetadata("s1", Metadata{LastQuery: "cómo anular una factura"})

	s := m.GetOrCreate("s1")
	if s.State != store.StateDeepReading {
		t.Error("metadata merge must not change state")
	}
	if s.LastQuery != "cómo anular una factura" {
		t.Error("last query not merged")
	}
}

func TestRecordFailureCounts(t *testing.T) {
	m := newTestManager()
	if got := m.RecordFailure("s1"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := m.RecordFailure("s1"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}
