package assessmentrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/aqi-health/internal/domain/healthrisk"
)

// MemoryRepository is an in-memory healthrisk.Repository used for tests/dev.
type MemoryRepository struct {
	mu        sync.RWMutex
	bySubject map[string][]healthrisk.Assessment
	byID      map[string]healthrisk.Assessment
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bySubject: make(map[string][]healthrisk.Assessment),
		byID:      make(map[string]healthrisk.Assessment),
	}
}

// Save implements healthrisk.Repository.
func (r *MemoryRepository) Save(_ context.Context, a healthrisk.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := append(r.bySubject[a.Subject], a)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AssessedAt.After(items[j].AssessedAt)
	})
	r.bySubject[a.Subject] = items
	r.byID[a.ID] = a
	return nil
}

// Get implements healthrisk.Repository.
func (r *MemoryRepository) Get(_ context.Context, id string) (healthrisk.Assessment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok, nil
}

// Latest implements healthrisk.Repository.
func (r *MemoryRepository) Latest(_ context.Context, subject string) (healthrisk.Assessment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.bySubject[subject]
	if len(items) == 0 {
		return healthrisk.Assessment{}, false, nil
	}
	return items[0], true, nil
}

// List implements healthrisk.Repository.
func (r *MemoryRepository) List(_ context.Context, subject string, limit int) ([]healthrisk.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.bySubject[subject]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]healthrisk.Assessment(nil), items...), nil
}

var _ healthrisk.Repository = (*MemoryRepository)(nil)
