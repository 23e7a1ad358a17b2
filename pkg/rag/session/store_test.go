package session

import (
	"testing"

	"manual-assistant-be/pkg/store"
)

func TestLockSerializesAndReleases(t *testing.T) {
	s := NewStore()

	unlock := s.Lock("sess-1")
	unlock()

	// A released lock must be acquirable again without blocking.
	unlock = s.Lock("sess-1")
	unlock()
}

func TestDeleteEvictsSessionLock(t *testing.T) {
	s := NewStore()
	s.Save(&store.Session{ID: "sess-1"})
	unlock := s.Lock("sess-1")
	unlock()

	s.Delete("sess-1")

	if _, held := s.locks.Load("sess-1"); held {
		t.Error("deleting a session must drop its lock as well")
	}
}

func TestDeleteKeepsOtherSessionLocks(t *testing.T) {
	s := NewStore()
	s.Save(&store.Session{ID: "sess-1"})
	s.Save(&store.Session{ID: "sess-2"})
	s.Lock("sess-1")()
	s.Lock("sess-2")()

	s.Delete("sess-1")

	if _, held := s.locks.Load("sess-2"); !held {
		t.Error("unrelated session locks must survive an eviction")
	}
}
