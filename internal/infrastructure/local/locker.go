// Package local coordinación en proceso para despliegues de una sola instancia (sin Redis).
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// ProductLocker mutex por producto con espera acotada.
type ProductLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

var _ inventory.ProductLocker = (*ProductLocker)(nil)

// NewProductLocker wait <= 0 espera hasta que el contexto se cancele.
func NewProductLocker(wait time.Duration) *ProductLocker {
	return &ProductLocker{locks: make(map[string]*keyLock), wait: wait}
}

// Acquire bloquea productID. Devuelve domain.ErrLockNotObtained si vence la espera o se cancela ctx
// (el error también envuelve ctx.Err()).
func (l *ProductLocker) Acquire(ctx context.Context, productID string) (inventory.ReleaseFunc, error) {
	l.mu.Lock()
	kl, ok := l.locks[productID]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[productID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.unref(productID, kl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(productID, kl)
		return nil, fmt.Errorf("%w: %w", domain.ErrLockNotObtained, ctx.Err())
	case <-timeout:
		l.unref(productID, kl)
		return nil, domain.ErrLockNotObtained
	}
}

func (l *ProductLocker) unref(productID string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, productID)
	}
}
