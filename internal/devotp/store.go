// Package devotp keeps the last OTP sent to each email so local and CI environments can
// complete verification without a mailbox. Only wired when DEV_OTP_ENABLED is set outside production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain OTP codes by normalized email. Not used in production.
type Store interface {
	// Put records code for email until expiresAt, replacing any earlier code.
	Put(ctx context.Context, email, code string, expiresAt time.Time)
	// Get returns the code for email if present and not expired.
	Get(ctx context.Context, email string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put records code for email until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, email, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[email] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for email if present and not expired. Expired entries are dropped.
func (s *MemoryStore) Get(ctx context.Context, email string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[email]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		if cur, ok := s.m[email]; ok && cur == e {
			delete(s.m, email)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
