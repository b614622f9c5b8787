package store

import (
	"context"
	"sync"
	"time"

	"saveedit/internal/saves/models"
)

// InMemorySessionStore keeps sessions in a map guarded by an RWMutex. It
// favors clarity over performance; expiry is enforced on read and stale
// entries are dropped opportunistically on write.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]storedSession
}

type storedSession struct {
	session  models.Session
	storedAt time.Time
}

func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]storedSession),
	}
}

func (s *InMemorySessionStore) Save(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{session: session, storedAt: time.Now()}
	s.purgeExpiredLocked()
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cached, ok := s.sessions[id]; ok {
		if time.Since(cached.storedAt) < s.ttl {
			return cached.session, nil
		}
	}
	return models.Session{}, ErrNotFound
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// purgeExpiredLocked drops expired sessions so abandoned uploads do not
// accumulate. Callers must hold the write lock.
func (s *InMemorySessionStore) purgeExpiredLocked() {
	for id, cached := range s.sessions {
		if time.Since(cached.storedAt) >= s.ttl {
			delete(s.sessions, id)
		}
	}
}
