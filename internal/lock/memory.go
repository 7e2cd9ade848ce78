package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock is the single-instance Locker used when no redis address is configured.
type MemoryLock struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}

	m.keys[key] = now.Add(ttl)

	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)

	return nil
}
