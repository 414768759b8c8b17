package session

import (
	"context"
	"sync"
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// User is the snapshot of the logged-in user kept with a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the snapshot carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// Record is what a Store persists for one session.
type Record struct {
	User         User      `json:"user"`
	Token        string    `json:"token,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// Store persists session records by key. Load returns
// domain.ErrSessionNotFound when nothing is stored under key.
type Store interface {
	Load(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, key string, rec *Record) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = *rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
