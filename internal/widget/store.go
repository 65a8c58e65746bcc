package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// Store owns the open sessions.
type Store struct {
	deps *Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(deps Deps) *Store {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Store{
		deps:     &deps,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session with the rate cache's default pickers.
func (st *Store) Create(ctx context.Context) *Session {
	s := newSession(uuid.NewString(), st.deps)

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	activeSessions.Add(ctx, 1)
	st.deps.Logger.Info("session opened", zap.String("session_id", s.id))
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	s.Close()
	activeSessions.Add(ctx, -1)
	st.deps.Logger.Info("session closed", zap.String("session_id", id))
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// Close closes every session.
func (st *Store) Close(ctx context.Context) {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		activeSessions.Add(ctx, -1)
	}
}
