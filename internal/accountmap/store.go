// Package accountmap remembers which ledger account a statement identifier
// was imported into, so the next statement with the same identifier can be
// routed without asking. It also holds small settings such as the ledger's
// OAuth token.
package accountmap

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Mapping links a statement identifier to a ledger account.
type Mapping struct {
	Identifier string    `json:"identifier"`
	AccountID  string    `json:"accountId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store is the identifier -> account ID dictionary. A miss is (_, false, nil).
type Store interface {
	Get(ctx context.Context, identifier string) (string, bool, error)
	Set(ctx context.Context, identifier, accountID string) error
	Delete(ctx context.Context, identifier string) error
	All(ctx context.Context) ([]Mapping, error)
}

// Settings is a string key-value store for credentials and preferences.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// MemoryStore keeps mappings and settings in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]Mapping
	settings map[string]string
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[string]Mapping),
		settings: make(map[string]string),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, identifier string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[identifier]
	return m.AccountID, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, identifier, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[identifier] = Mapping{Identifier: identifier, AccountID: accountID, UpdatedAt: s.now().UTC()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mappings, identifier)
	return nil
}

// All returns mappings sorted by identifier.
func (s *MemoryStore) All(_ context.Context) ([]Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Mapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (s *MemoryStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *MemoryStore) DeleteSetting(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, key)
	return nil
}
