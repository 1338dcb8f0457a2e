package inventory

import (
	"context"

	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de lotes: movimiento, lotes y agregado del producto
// se confirman juntos o no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// ReleaseFunc libera un bloqueo obtenido con ProductLocker.
type ReleaseFunc func()

// ProductLocker serializa las escrituras sobre un mismo producto (un escritor por producto).
// Devuelve domain.ErrLockNotObtained si no consigue el bloqueo dentro de la ventana de reintentos.
type ProductLocker interface {
	Acquire(ctx context.Context, productID string) (ReleaseFunc, error)
}

// IdempotencyStore reserva claves Idempotency-Key para no registrar dos veces el mismo movimiento.
type IdempotencyStore interface {
	// Reserve devuelve false si la clave ya estaba reservada.
	Reserve(ctx context.Context, key string) (bool, error)
	// Forget libera la clave (el registro falló y el cliente puede reintentar).
	Forget(ctx context.Context, key string) error
}
