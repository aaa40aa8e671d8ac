package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.ProgramStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory recent-program list. Safe for concurrent access.
type MemoryStore struct {
	mu     sync.RWMutex
	recent []domain.Program
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log}
}

// Recent returns the stored programs, most recent first.
func (s *MemoryStore) Recent(ctx context.Context) ([]domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recent), nil
}

// Get retrieves a program by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := find(s.recent, id)
	if err != nil {
		s.log.Debug("program not found: %s", id)
		return nil, err
	}
	return p, nil
}

// Touch stores program at the front of the list.
func (s *MemoryStore) Touch(ctx context.Context, program domain.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = touch(s.recent, program)
	s.log.Debug("touched program %s (recent=%d)", program.ID, len(s.recent))
	return nil
}

// Delete removes a program by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := remove(s.recent, id)
	if err != nil {
		return err
	}
	s.recent = list
	s.log.Debug("deleted program %s", id)
	return nil
}
