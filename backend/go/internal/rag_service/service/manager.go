package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PDFChat/backend/go/internal/rag_service/rag/pipeline"
	"PDFChat/backend/go/pkg/util"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager keeps sessions in a bounded LRU whose entries expire after a period of inactivity.
type Manager struct {
	deps     Deps
	sessions *util.LRUCache[string, *Session]
}

// NewManager creates a Manager holding at most capacity sessions.
func NewManager(deps Deps, capacity int, ttl time.Duration) (*Manager, error) {
	if _, err := pipeline.NewRetrievalPipeline(deps.nResults(), deps.Log); err != nil {
		return nil, err
	}

	log := deps.Log
	cache, err := util.NewWithConfig(util.CacheConfig[string, *Session]{
		Capacity: capacity,
		TTL:      ttl,
		OnEvict: func(id string, _ *Session) {
			log.WithField("session_id", id).Debug("session evicted")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Manager{deps: deps, sessions: cache}, nil
}

// Create starts a new session.
func (m *Manager) Create() (*Session, error) {
	s, err := NewSession(uuid.NewString(), m.deps)
	if err != nil {
		return nil, err
	}
	m.sessions.Put(s.ID(), s)
	return s, nil
}

// Get returns the live session with id.
func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// GetOrCreate returns the session with id, or a new one when id is unknown.
// The boolean reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool, error) {
	if s, err := m.Get(id); err == nil {
		return s, false, nil
	}
	s, err := m.Create()
	return s, err == nil, err
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// RunJanitor purges expired sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sessions.PurgeExpired(); n > 0 {
				m.deps.Log.Debug(fmt.Sprintf("purged %d expired sessions", n))
			}
		}
	}
}
