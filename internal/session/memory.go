// internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

type memoryEntry struct {
	token     oauth2.Token
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore; ttl <= 0 keeps entries until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, id string, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{token: *token, expiresAt: expiryFrom(m.now(), m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*oauth2.Token, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if m.expired(entry) {
		m.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if current, ok := m.entries[id]; ok && m.expired(current) {
			delete(m.entries, id)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	token := entry.token
	return &token, nil
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt)
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
