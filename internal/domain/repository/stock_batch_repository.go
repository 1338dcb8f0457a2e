package repository

import (
	"context"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ExpiringBatch lote activo con caducidad próxima, con datos mínimos del producto para mostrar.
type ExpiringBatch struct {
	Batch       entity.StockBatch
	ProductName string
	Unit        string
}

// StockBatchRepository define el puerto de persistencia para lotes (DIP).
// Los lotes nunca se borran: solo se desactivan al llegar a cero.
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, id string) (*entity.StockBatch, error)

	// ListActiveByProduct lotes con is_active y quantity > 0, en orden de consumo:
	// expiry_date ASC NULLS LAST, purchase_date ASC. Sin paginación: el motor necesita el conjunto completo.
	ListActiveByProduct(ctx context.Context, productID string) ([]*entity.StockBatch, error)
	// ListActiveByProductForUpdate igual que ListActiveByProduct pero bloqueando las filas (SELECT FOR UPDATE).
	ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockBatch, error)

	// UpdateQuantity fija quantity, is_active = quantity > 0, refresca updated_at e incrementa version.
	UpdateQuantity(ctx context.Context, batch *entity.StockBatch) error
	// Update corrección manual. Devuelve domain.ErrConflict si la versión almacenada no es expectedVersion.
	Update(ctx context.Context, batch *entity.StockBatch, expectedVersion int64) error

	SumActiveByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
	ListExpiring(ctx context.Context, companyID string, until time.Time, limit int) ([]ExpiringBatch, error)
}
