package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// BatchUseCase consultas de lotes y corrección manual.
type BatchUseCase struct {
	batchRepo    repository.StockBatchRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	batchRepo repository.StockBatchRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	log *logger.Logger,
) *BatchUseCase {
	return &BatchUseCase{
		batchRepo:    batchRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		log:          log,
		now:          time.Now,
	}
}

// BatchUpdateInput corrección parcial de un lote: solo se aplican los campos no nil.
// Version, si viene, debe coincidir con la almacenada.
type BatchUpdateInput struct {
	CompanyID   string
	UserID      string
	BatchID     string
	Quantity    *decimal.Decimal
	ExpiryDate  *time.Time
	ClearExpiry bool
	SupplierID  *string
	UnitPrice   *decimal.Decimal
	BatchNumber *string
	Version     *int64
}

// BatchUpdateResult lote corregido más el descuadre resultante con el stock del producto.
// La corrección no toca el libro de movimientos ni current_stock.
type BatchUpdateResult struct {
	Batch        *entity.StockBatch
	CurrentStock decimal.Decimal
	BatchTotal   decimal.Decimal
	Drift        decimal.Decimal
}

// ListActive lotes activos del producto en orden de consumo.
func (uc *BatchUseCase) ListActive(ctx context.Context, companyID, productID string) ([]*entity.StockBatch, error) {
	if _, err := ownedProduct(ctx, uc.productRepo, companyID, productID); err != nil {
		return nil, err
	}
	batches, err := uc.batchRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	return batches, nil
}

// ListExpiring lotes activos que caducan en los próximos days días (incluye los ya caducados).
func (uc *BatchUseCase) ListExpiring(ctx context.Context, companyID string, days, limit int) ([]repository.ExpiringBatch, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	if days < 0 {
		return nil, domain.ErrInvalidInput
	}
	until := inventory.TruncateToDate(uc.now()).AddDate(0, 0, days)
	items, err := uc.batchRepo.ListExpiring(ctx, companyID, until, limit)
	if err != nil {
		return nil, fmt.Errorf("listar lotes por caducar: %w", err)
	}
	return items, nil
}

// Update aplica una corrección manual al lote. is_active se recalcula desde la cantidad.
func (uc *BatchUseCase) Update(ctx context.Context, in BatchUpdateInput) (*BatchUpdateResult, error) {
	if in.CompanyID == "" || in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.BatchID == "" {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.batchRepo.GetByID(ctx, in.BatchID)
	if err != nil {
		return nil, fmt.Errorf("buscar lote: %w", err)
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	product, err := ownedProduct(ctx, uc.productRepo, in.CompanyID, batch.ProductID)
	if err != nil {
		return nil, err
	}

	expected := batch.Version
	if in.Version != nil {
		if *in.Version != batch.Version {
			return nil, domain.ErrConflict
		}
		expected = *in.Version
	}

	now := uc.now()
	if in.Quantity != nil {
		// En correcciones se admite cero (lote vaciado a mano); negativo nunca.
		if in.Quantity.IsNegative() || !in.Quantity.Equal(in.Quantity.Truncate(inventory.QuantityScale)) {
			return nil, domain.ErrInvalidQuantity
		}
		batch.SetQuantity(*in.Quantity, now)
	}
	if in.ClearExpiry {
		batch.ExpiryDate = nil
	} else if in.ExpiryDate != nil {
		d := inventory.TruncateToDate(*in.ExpiryDate)
		batch.ExpiryDate = &d
	}
	if in.SupplierID != nil {
		if *in.SupplierID == "" {
			batch.SupplierID = nil
		} else {
			supplier, err := uc.supplierRepo.GetByID(ctx, *in.SupplierID)
			if err != nil {
				return nil, fmt.Errorf("buscar proveedor: %w", err)
			}
			if supplier == nil || supplier.CompanyID != in.CompanyID {
				return nil, domain.ErrNotFound
			}
			batch.SupplierID = in.SupplierID
		}
	}
	if in.UnitPrice != nil {
		if err := inventory.ValidateUnitPrice(*in.UnitPrice); err != nil {
			return nil, err
		}
		batch.UnitPrice = in.UnitPrice
	}
	if in.BatchNumber != nil {
		batch.BatchNumber = *in.BatchNumber
	}
	batch.UpdatedAt = now

	if err := uc.batchRepo.Update(ctx, batch, expected); err != nil {
		return nil, err
	}

	drift, total, err := Drift(ctx, uc.batchRepo, product)
	if err != nil {
		return nil, err
	}
	if !drift.IsZero() {
		uc.log.Info().
			Str("product_id", product.ID).
			Str("batch_id", batch.ID).
			Str("user_id", in.UserID).
			Str("drift", drift.String()).
			Msg("corrección de lote deja descuadre con el stock del producto")
	}
	return &BatchUpdateResult{
		Batch:        batch,
		CurrentStock: product.CurrentStock,
		BatchTotal:   total,
		Drift:        drift,
	}, nil
}

// ownedProduct producto existente y de la empresa del token.
func ownedProduct(ctx context.Context, productRepo repository.ProductRepository, companyID, productID string) (*entity.Product, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("buscar producto: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}
