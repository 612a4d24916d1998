// Package session keeps live intake sessions and serializes work on each
// one.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"dokter-remaja/internal/dialogue"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots.  Get returns a copy the caller may
// modify; changes are kept only through Save.
type Store interface {
	Create(ctx context.Context, s *dialogue.Session) error
	Get(ctx context.Context, id string) (*dialogue.Session, error)
	Save(ctx context.Context, s *dialogue.Session) error
	Delete(ctx context.Context, id string) error
	// Expired lists the ids of sessions not updated since before.
	Expired(ctx context.Context, before time.Time) ([]string, error)
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*dialogue.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*dialogue.Session)}
}

func (m *MemoryStore) Create(_ context.Context, s *dialogue.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*dialogue.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) Save(_ context.Context, s *dialogue.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Expired(_ context.Context, before time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// clone copies the slices a controller appends to, so stored snapshots are
// never shared with callers.
func clone(s *dialogue.Session) *dialogue.Session {
	c := *s
	c.Pairs = append(c.Pairs[:0:0], s.Pairs...)
	c.Transcript = append(c.Transcript[:0:0], s.Transcript...)
	if s.Outcome != nil {
		o := *s.Outcome
		c.Outcome = &o
	}
	return &c
}
