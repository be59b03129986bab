package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"wtrfll/server/internal/lyrics/domain"
)

// MemoryRepository is an in-memory Repository implementation, used in tests
// and when the server runs without DATABASE_URL.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]*domain.Entry
}

// NewMemoryRepository returns an empty in-memory lyrics repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]*domain.Entry)}
}

// Create inserts a new catalog entry.
func (r *MemoryRepository) Create(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

// Update rewrites an existing entry.
func (r *MemoryRepository) Update(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; !ok {
		return ErrEntryNotFound
	}
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

// Delete removes an entry.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

// GetByID returns the entry for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

// Search lists entries matching query by title or author, newest first.
func (r *MemoryRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []*domain.Summary
	for _, e := range r.entries {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Author), needle) {
			continue
		}
		out = append(out, &domain.Summary{
			ID:        e.ID,
			Title:     e.Title,
			Author:    e.Author,
			UpdatedAt: e.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
