package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/history"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
)

// Store persists opaque blobs by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps blobs in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// NewMemoryStore constructs a store; a positive ttl expires idle keys.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl}
}

// Load returns a copy of the blob stored under key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if hasExpired(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, true, nil
}

// Save replaces the blob stored under key.
func (s *MemoryStore) Save(_ context.Context, key string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	exp := time.Time{}
	if s.ttl > 0 {
		exp = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: stored, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var (
	_ history.Store    = (*MemoryStore)(nil)
	_ preference.Store = (*MemoryStore)(nil)
)
