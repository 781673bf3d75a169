package repository

import (
	"context"
	"sort"
	"sync"

	"storefront-auth/backend/internal/audit/domain"
)

// MemoryRepository keeps audit logs in process. Used when no database is configured.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends a copy of a.
func (m *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *a
	m.entries = append(m.entries, &c)
	return nil
}

// ListByAccount returns the newest entries for accountID, at most limit.
func (m *MemoryRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range m.entries {
		if e.AccountID == accountID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
