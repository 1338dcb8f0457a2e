package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const productLockPrefix = "lock:product:"

// ProductLocker bloqueo distribuido por producto (un escritor por producto entre instancias).
type ProductLocker struct {
	client *redislock.Client
	ttl    time.Duration
	opts   *redislock.Options
}

var _ inventory.ProductLocker = (*ProductLocker)(nil)

// NewProductLocker ttl acota cuánto vive el bloqueo si el proceso muere sin liberarlo;
// retries y retryEvery definen la espera antes de devolver ErrLockNotObtained.
func NewProductLocker(client *goredis.Client, ttl time.Duration, retries int, retryEvery time.Duration) *ProductLocker {
	return &ProductLocker{
		client: redislock.New(client),
		ttl:    ttl,
		opts: &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryEvery), retries),
		},
	}
}

// Acquire obtiene lock:product:<id>.
func (l *ProductLocker) Acquire(ctx context.Context, productID string) (inventory.ReleaseFunc, error) {
	lock, err := l.client.Obtain(ctx, productLockPrefix+productID, l.ttl, l.opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLockNotObtained, ctxErr)
		}
		return nil, fmt.Errorf("obtener bloqueo de producto: %w", err)
	}
	return func() {
		// ctx propio: el de la petición puede estar cancelado.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, nil
}
