package repository

import (
	"context"
	"sync"

	"storefront-auth/backend/internal/usertype/domain"
)

// MemoryRepository keeps user types in insertion order. Used without DATABASE_URL and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	items []*domain.UserType
	keys  map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{keys: make(map[string]struct{})}
}

func (m *MemoryRepository) Insert(ctx context.Context, ut *domain.UserType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := domain.NameKey(ut.Name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return ErrDuplicateName
	}
	c := *ut
	m.items = append(m.items, &c)
	m.keys[key] = struct{}{}
	return nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*domain.UserType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.UserType, 0, len(m.items))
	for _, ut := range m.items {
		c := *ut
		out = append(out, &c)
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
