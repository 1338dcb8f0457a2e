package local

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
)

// IdempotencyStore claves reservadas en memoria con expiración.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

var _ inventory.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore crea el store.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// Limpieza perezosa de claves vencidas
	for k, exp := range s.keys {
		if !now.Before(exp) {
			delete(s.keys, k)
		}
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = now.Add(s.ttl)
	return true, nil
}

func (s *IdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
