// Package session implements the server-side session store holding each
// user's OAuth token set, keyed by a cookie-carried session ID.
package session

import (
	"sync"
	"time"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"

	"github.com/google/uuid"
)

type record struct {
	tokens    *entity.TokenSet
	expiresAt time.Time
}

// MemoryStore is an in-memory session store with a sliding TTL. Each
// session is only ever mutated by the request that owns its cookie, so a
// plain RWMutex over the map is all the coordination needed.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]record
}

// NewMemoryStore is the constructor for MemoryStore.
func NewMemoryStore(cfg *config.Config) service.SessionStore {
	return &MemoryStore{
		ttl:      cfg.Session.TTL,
		sessions: make(map[string]record),
	}
}

// Get returns the token set for a session ID, or false when the session
// does not exist or has expired.
func (s *MemoryStore) Get(id string) (*entity.TokenSet, bool) {
	s.mu.RLock()
	rec, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(rec.expiresAt) {
		s.Delete(id)

		return nil, false
	}

	return rec.tokens, true
}

// Put stores the token set and slides the TTL, returning the session ID.
// A caller-supplied ID is honored only when that session already exists;
// any other value gets a freshly minted ID so a client can never choose
// the ID its tokens are stored under.
func (s *MemoryStore) Put(id string, tokens *entity.TokenSet) string {
	s.mu.Lock()
	if _, exists := s.sessions[id]; !exists {
		id = uuid.New().String()
	}
	s.sessions[id] = record{
		tokens:    tokens,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.cleanupExpiredLocked()
	s.mu.Unlock()

	return id
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// cleanupExpiredLocked removes expired sessions. Caller holds the lock.
func (s *MemoryStore) cleanupExpiredLocked() {
	now := time.Now()
	for id, rec := range s.sessions {
		if now.After(rec.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
