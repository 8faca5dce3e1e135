package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/food_order/internal/ledger"
)

var ErrMiss = errors.New("session miss")

// Store keeps one ledger snapshot per user.
type Store interface {
	Load(ctx context.Context, userID string) (ledger.Snapshot, error)
	Save(ctx context.Context, userID string, snap ledger.Snapshot) error
	Delete(ctx context.Context, userID string) error
}

type memoryEntry struct {
	snap    ledger.Snapshot
	expires time.Time
}

// MemoryStore keeps sessions in process. Entries expire like Redis keys,
// baseTTL after their last save.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      baseTTL,
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		return ledger.Snapshot{}, ErrMiss
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, userID)
		return ledger.Snapshot{}, ErrMiss
	}
	return ledger.Restore(e.snap).Snapshot(), nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, snap ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
		}
	}
	m.sessions[userID] = memoryEntry{
		snap:    ledger.Restore(snap).Snapshot(),
		expires: now.Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// size counts stored sessions, expired ones included until they are swept.
func (m *MemoryStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
