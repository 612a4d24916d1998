package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"dokter-remaja/internal/dialogue"
)

// Manager creates sessions and runs updates on them one at a time per id.
// Different sessions proceed in parallel.
type Manager struct {
	Store     Store
	TurnLimit int
	TTL       time.Duration
	Log       *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager constructs a Manager.  A zero ttl disables expiry.
func NewManager(store Store, turnLimit int, ttl time.Duration, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		Store:     store,
		TurnLimit: turnLimit,
		TTL:       ttl,
		Log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Create starts a new session with a random id.
func (m *Manager) Create(ctx context.Context) (*dialogue.Session, error) {
	s := dialogue.NewSession(uuid.NewString(), m.TurnLimit)
	if err := m.Store.Create(ctx, s); err != nil {
		return nil, eris.Wrap(err, "create session")
	}
	m.Log.WithField("session", s.ID).Info("session created")
	return s, nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(ctx context.Context, id string) (*dialogue.Session, error) {
	return m.Store.Get(ctx, id)
}

// Update loads the session, runs fn with exclusive access and saves the
// result when fn succeeds.  When fn fails nothing is saved.
func (m *Manager) Update(ctx context.Context, id string, fn func(*dialogue.Session) error) (*dialogue.Session, error) {
	lock := m.lock(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.forget(id)
	}
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return s, err
	}
	if err := m.Store.Save(ctx, s); err != nil {
		return s, eris.Wrapf(err, "save session %s", id)
	}
	return s, nil
}

// End destroys the session.
func (m *Manager) End(ctx context.Context, id string) error {
	lock := m.lock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := m.Store.Delete(ctx, id); err != nil {
		return err
	}
	m.forget(id)
	m.Log.WithField("session", id).Info("session ended")
	return nil
}

// Sweep removes sessions idle for longer than the TTL.  A session with a
// turn in progress is left for a later sweep.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	if m.TTL <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-m.TTL)
	ids, err := m.Store.Expired(ctx, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sweep sessions")
	}
	n := 0
	for _, id := range ids {
		removed, err := m.expire(ctx, id, cutoff)
		if err != nil {
			return n, eris.Wrapf(err, "sweep session %s", id)
		}
		if removed {
			n++
		}
	}
	if n > 0 {
		m.Log.WithField("count", n).Info("expired sessions removed")
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.Log.WithError(err).Warn("session sweep failed")
			}
		}
	}
}

// expire deletes id if it is idle and still older than cutoff once its lock
// is held.
func (m *Manager) expire(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	lock := m.lock(id)
	if !lock.TryLock() {
		return false, nil
	}
	defer lock.Unlock()

	s, err := m.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.forget(id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !s.UpdatedAt.Before(cutoff) {
		return false, nil
	}
	if err := m.Store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	m.forget(id)
	return true, nil
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
}
