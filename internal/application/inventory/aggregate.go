package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AggregateMode fuente de verdad para products.current_stock.
type AggregateMode string

const (
	// AggregateModeMovements suma con signo las cantidades de los movimientos (comportamiento histórico).
	AggregateModeMovements AggregateMode = "movements"
	// AggregateModeBatches recalcula current_stock desde los lotes activos en productos con track_expiry.
	AggregateModeBatches AggregateMode = "batches"
)

// ParseAggregateMode interpreta AGGREGATE_MODE; cualquier valor desconocido cae en movements.
func ParseAggregateMode(s string) AggregateMode {
	if AggregateMode(strings.ToLower(strings.TrimSpace(s))) == AggregateModeBatches {
		return AggregateModeBatches
	}
	return AggregateModeMovements
}

// AggregateUpdater mantiene products.current_stock tras cada movimiento.
type AggregateUpdater struct {
	mode AggregateMode
}

// NewAggregateUpdater construye el actualizador.
func NewAggregateUpdater(mode AggregateMode) *AggregateUpdater {
	return &AggregateUpdater{mode: mode}
}

// Mode modo configurado.
func (u *AggregateUpdater) Mode() AggregateMode { return u.mode }

// Apply calcula y persiste el nuevo current_stock del producto después de registrar mov.
// Devuelve el valor persistido.
func (u *AggregateUpdater) Apply(
	ctx context.Context,
	productRepo repository.ProductRepository,
	batchRepo repository.StockBatchRepository,
	product *entity.Product,
	mov *entity.StockMovement,
) (decimal.Decimal, error) {
	next := product.CurrentStock.Add(mov.SignedQuantity())
	if u.mode == AggregateModeBatches && product.TrackExpiry {
		total, err := batchRepo.SumActiveByProduct(ctx, product.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("sumar lotes activos: %w", err)
		}
		next = total
	}
	if err := productRepo.UpdateStock(ctx, product.ID, next); err != nil {
		return decimal.Zero, fmt.Errorf("actualizar stock del producto: %w", err)
	}
	product.CurrentStock = next
	return next, nil
}

// Drift diferencia current_stock - suma de lotes activos. Cero si ambos coinciden.
func Drift(ctx context.Context, batchRepo repository.StockBatchRepository, product *entity.Product) (decimal.Decimal, decimal.Decimal, error) {
	total, err := batchRepo.SumActiveByProduct(ctx, product.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sumar lotes activos: %w", err)
	}
	return product.CurrentStock.Sub(total), total, nil
}
