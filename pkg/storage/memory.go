package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory keeps slots in process memory. It backs tests and single-instance
// runs where no Redis is configured; watches fire synchronously on every
// write, so two components sharing one Memory observe each other the same
// way two tabs share a browser's storage.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	next     int
	watchers map[string]map[int]func([]byte, bool)
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]memoryEntry),
		watchers: make(map[string]map[int]func([]byte, bool)),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	fns := m.watchersFor(key)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(entry.value, true)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	fns := m.watchersFor(key)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(nil, false)
	}
	return nil
}

func (m *Memory) Watch(key string, fn func([]byte, bool)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[int]func([]byte, bool))
	}
	m.watchers[key][id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.watchers[key], id)
		m.mu.Unlock()
	}
}

// watchersFor copies the callback set so it can be invoked after unlock.
func (m *Memory) watchersFor(key string) []func([]byte, bool) {
	fns := make([]func([]byte, bool), 0, len(m.watchers[key]))
	for _, fn := range m.watchers[key] {
		fns = append(fns, fn)
	}
	return fns
}
