package repository

import (
	"context"
	"sync"

	"lumina-face-analysis/internal/workflow"
)

// MemorySessionRepository keeps sessions in process memory
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*workflow.Controller
}

// NewMemorySessionRepository creates an empty repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*workflow.Controller)}
}

func (r *MemorySessionRepository) Save(ctx context.Context, c *workflow.Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[c.ID()]; ok {
		return ErrSessionExists
	}
	r.sessions[c.ID()] = c
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*workflow.Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
