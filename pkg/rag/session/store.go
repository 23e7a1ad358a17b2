package session

import (
	"sync"
	"time"

	"manual-assistant-be/pkg/store"

	gocache "github.com/patrickmn/go-cache"
)

// Store holds per-conversation sessions in memory. Sessions expire after an
// idle TTL; losing the process loses all sessions, which is acceptable for
// this domain (documented limitation).
type Store struct {
	cache *gocache.Cache
	locks sync.Map // session id -> *sync.Mutex
}

func NewStore() *Store {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	s := &Store{cache: gocache.New(1*time.Hour, 10*time.Minute)}
	// The lock goes with the session, otherwise the lock map grows by one
	// mutex per conversation for the life of the process.
	s.cache.OnEvicted(func(sessionID string, _ interface{}) {
		s.locks.Delete(sessionID)
	})
	return s
}

func (s *Store) Get(sessionID string) (*store.Session, bool) {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (s *Store) Save(session *store.Session) {
	s.cache.Set(session.ID, session, gocache.DefaultExpiration)
}

func (s *Store) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Lock serializes message handling per session id while leaving distinct
// sessions fully concurrent. Returns the unlock function.
func (s *Store) Lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
