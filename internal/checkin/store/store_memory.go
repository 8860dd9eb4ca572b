// Package store persists check-in sessions. Every implementation applies
// updates as a compare-and-set on Session.Version.
package store

import (
	"context"
	"sync"

	"nilgate/internal/checkin/models"
	"nilgate/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map. Suitable for single-instance
// deployments and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func New() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.Session)}
}

// Create stores a new session at version 1.
func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return session.Clone(), nil
}

// Update writes session if the stored version still equals expectedVersion,
// then bumps session.Version.
func (s *InMemoryStore) Update(_ context.Context, session *models.Session, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != expectedVersion {
		return sentinel.ErrConflict
	}
	session.Version = expectedVersion + 1
	s.sessions[session.ID] = session.Clone()
	return nil
}
