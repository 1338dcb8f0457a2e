package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BatchEngine aplica el efecto de un movimiento sobre los lotes: crea el lote de una compra
// o descuenta lotes en orden FIFO para una salida. Opera con los repositorios de la tx en curso.
type BatchEngine struct {
	newID func() string
}

// NewBatchEngine construye el motor con IDs UUID.
func NewBatchEngine() *BatchEngine {
	return &BatchEngine{newID: func() string { return uuid.New().String() }}
}

// ReceivePurchase crea exactamente un lote activo a partir de una compra.
func (e *BatchEngine) ReceivePurchase(
	ctx context.Context,
	batchRepo repository.StockBatchRepository,
	mov *entity.StockMovement,
	purchaseDate, now time.Time,
) (*entity.StockBatch, error) {
	batch := inventory.NewPurchaseBatch(e.newID(), mov, purchaseDate, now)
	if err := batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("crear lote: %w", err)
	}
	return batch, nil
}

// Deplete descuenta quantity de los lotes activos del producto (bloqueados FOR UPDATE) y persiste
// cada lote tocado. Un faltante no es error: queda en ConsumptionResult.Shortfall.
func (e *BatchEngine) Deplete(
	ctx context.Context,
	batchRepo repository.StockBatchRepository,
	productID string,
	quantity decimal.Decimal,
	now time.Time,
) (inventory.ConsumptionResult, error) {
	batches, err := batchRepo.ListActiveByProductForUpdate(ctx, productID)
	if err != nil {
		return inventory.ConsumptionResult{}, fmt.Errorf("listar lotes activos: %w", err)
	}
	result, touched, err := inventory.ConsumeFIFO(batches, quantity, now)
	if err != nil {
		return inventory.ConsumptionResult{}, err
	}
	for _, b := range touched {
		if err := batchRepo.UpdateQuantity(ctx, b); err != nil {
			return inventory.ConsumptionResult{}, fmt.Errorf("actualizar lote %s: %w", b.ID, err)
		}
	}
	return result, nil
}
