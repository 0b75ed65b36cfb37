package session

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// Registry keeps the open editing sessions of the admin API.
type Registry struct {
	client   ContentClient
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(client ContentClient) *Registry {
	return &Registry{
		client:   client,
		sessions: make(map[string]*Session),
	}
}

// Create opens and initializes a session. The notice is non-empty when the
// content could not be loaded.
func (r *Registry) Create(ctx context.Context) (*Session, string) {
	s := New(r.client)
	notice := s.Initialize(ctx)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	return s, notice
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap removes sessions idle for longer than maxIdle and returns their ids.
// Sessions with a commit in flight are kept.
func (r *Registry) Reap(maxIdle time.Duration) mapset.Set[string] {
	now := time.Now()
	idle := mapset.NewThreadUnsafeSet[string]()

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.Committing() || now.Sub(s.LastActive()) <= maxIdle {
			continue
		}
		idle.Add(id)
	}

	for _, id := range idle.ToSlice() {
		if s := r.sessions[id]; s.Dirty() {
			logrus.Warnf("discarding idle session %s with unsaved edits", id)
		}
		delete(r.sessions, id)
	}

	return idle
}
