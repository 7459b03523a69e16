package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with a background sweep of expired entries.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type memEntry struct {
	value   []byte
	expires time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory starts a sweep every cleanupEvery; zero disables the sweep.
func NewMemory(cleanupEvery time.Duration) *Memory {
	m := &Memory{
		data: make(map[string]memEntry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if cleanupEvery > 0 {
		go m.cleanupLoop(cleanupEvery)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || !m.now().Before(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = memEntry{value: cp, expires: m.now().Add(ttl)}
	return nil
}

// Len counts stored entries, expired ones included until the next sweep.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if !now.Before(e.expires) {
			delete(m.data, k)
		}
	}
}
