package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itsneelabh/storefront/core"
)

// MemoryManager keeps sessions in process. It suits a single replica and
// tests, and can be told to fail for error-path testing.
type MemoryManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	config      Config
	now         func() time.Time
	shouldFail  bool   // For testing error conditions
	failPattern string // Specific method to fail
}

// NewMemoryManager creates an empty in-process store
func NewMemoryManager(config Config) *MemoryManager {
	return &MemoryManager{
		sessions: make(map[string]*Session),
		config:   config.withDefaults(),
		now:      time.Now,
	}
}

// SetFailure makes the named method (or every method, for "") return an
// error
func (m *MemoryManager) SetFailure(shouldFail bool, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = shouldFail
	m.failPattern = pattern
}

func (m *MemoryManager) fail(method string) error {
	if m.shouldFail && (m.failPattern == "" || m.failPattern == method) {
		return fmt.Errorf("mock failure: %s", method)
	}
	return nil
}

// Create stores a new anonymous session
func (m *MemoryManager) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("Create"); err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}
	m.sessions[s.ID] = s.clone()
	return s, nil
}

// Get returns a copy of the stored session
func (m *MemoryManager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.fail("Get"); err != nil {
		return nil, err
	}

	s, ok := m.sessions[id]
	if !ok {
		return nil, &core.OpError{Op: "session.Get", Kind: "session", ID: id, Err: core.ErrSessionNotFound}
	}
	if s.Expired(m.now()) {
		return nil, &core.OpError{Op: "session.Get", Kind: "session", ID: id, Err: core.ErrSessionExpired}
	}
	return s.clone(), nil
}

// Save replaces the stored copy and slides its expiry forward
func (m *MemoryManager) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("Save"); err != nil {
		return err
	}

	now := m.now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(m.config.TTL)
	m.sessions[s.ID] = s.clone()
	return nil
}

// Delete removes a session
func (m *MemoryManager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("Delete"); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

// CleanupExpiredSessions drops expired sessions and returns how many
func (m *MemoryManager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close is a no-op
func (m *MemoryManager) Close() error {
	return nil
}
