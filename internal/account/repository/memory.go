package repository

import (
	"context"
	"sync"

	"storefront-auth/backend/internal/account/domain"
)

// MemoryRepository is a mutex-guarded in-process Repository. The server uses it when
// DATABASE_URL is empty; tests use it as a fake.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.Account
	byEmail map[string]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

// FindByEmail returns a copy of the account for email, or nil.
func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return clone(m.byID[id]), nil
}

// FindByID returns a copy of the account for id, or nil.
func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.byID[id]), nil
}

// Insert stores a copy of a unless its email is taken.
func (m *MemoryRepository) Insert(ctx context.Context, a *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[a.Email]; ok {
		return ErrDuplicateEmail
	}
	m.byID[a.ID] = clone(a)
	m.byEmail[a.Email] = a.ID
	return nil
}

// Update overwrites the stored account with the same ID.
func (m *MemoryRepository) Update(ctx context.Context, a *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[a.ID]
	if !ok {
		return ErrAccountNotFound
	}
	next := clone(a)
	next.Email = cur.Email
	next.CreatedAt = cur.CreatedAt
	m.byID[a.ID] = next
	return nil
}

// Len returns the number of stored accounts.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func clone(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.OTP != nil {
		ch := *a.OTP
		c.OTP = &ch
	}
	return &c
}

var _ Repository = (*MemoryRepository)(nil)
