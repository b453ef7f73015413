package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory.  It is used when Redis is
// not reachable and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memoryItem
}

type memoryItem struct {
	s       Session
	expires time.Time
}

// NewMemoryStore returns a store whose sessions expire ttl after creation.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{ttl: ttl, now: now, data: make(map[string]memoryItem)}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gc()
	m.data[s.ID] = memoryItem{s: *s, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := it.s
	return &s, nil
}

func (m *MemoryStore) MarkPageViewed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.lookup(id)
	if !ok {
		return false, ErrNotFound
	}
	if it.s.PageViewLogged {
		return false, nil
	}
	it.s.PageViewLogged = true
	m.data[id] = it
	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(id string) (memoryItem, bool) {
	it, ok := m.data[id]
	if !ok {
		return memoryItem{}, false
	}
	if !m.now().Before(it.expires) {
		delete(m.data, id)
		return memoryItem{}, false
	}
	return it, true
}

// gc drops expired sessions; must be called with mu held.
func (m *MemoryStore) gc() {
	now := m.now()
	for id, it := range m.data {
		if !now.Before(it.expires) {
			delete(m.data, id)
		}
	}
}
