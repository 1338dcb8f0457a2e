package redis

import (
	"context"
	"time"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	goredis "github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idem:movement:"

// IdempotencyStore reserva claves con SET NX y expiración.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ inventory.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore ttl = ventana en la que se rechaza la misma clave.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, idempotencyPrefix+key, 1, s.ttl).Result()
}

func (s *IdempotencyStore) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyPrefix+key).Err()
}
