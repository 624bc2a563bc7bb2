package store

import (
	"sync"

	"didactax/internal/util"
)

// MemorySessionStore keeps session tokens in-process. Sessions do not
// survive a restart, which is acceptable for a local single-user setup.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]uint
}

// NewMemorySessionStore initializes an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]uint)}
}

// NewSession creates an opaque token bound to the user ID.
func (m *MemorySessionStore) NewSession(userID uint) (string, error) {
	token := util.NewID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token to its user ID.
func (m *MemorySessionStore) GetUserIDByToken(token string) (uint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.sess[token]
	return userID, ok, nil
}

// DeleteSession removes a token; absent tokens are a no-op.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
