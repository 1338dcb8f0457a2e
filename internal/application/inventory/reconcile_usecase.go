package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReconciliationReport compara products.current_stock con la suma de lotes activos.
type ReconciliationReport struct {
	ProductID     string
	CompanyID     string
	ProductName   string
	SKU           string
	Unit          string
	TrackExpiry   bool
	CurrentStock  decimal.Decimal
	BatchTotal    decimal.Decimal
	Drift         decimal.Decimal // CurrentStock - BatchTotal
	ActiveBatches int
	Applied       bool
}

// InSync true si no hay descuadre.
func (r ReconciliationReport) InSync() bool { return r.Drift.IsZero() }

// ReconcileUseCase detecta y corrige el descuadre entre el agregado del producto y sus lotes.
type ReconcileUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	batchRepo   repository.StockBatchRepository
	locker      ProductLocker
	log         *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	batchRepo repository.StockBatchRepository,
	locker ProductLocker,
	log *logger.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		locker:      locker,
		log:         log,
	}
}

// Report informe de un producto de la empresa.
func (uc *ReconcileUseCase) Report(ctx context.Context, companyID, productID string) (*ReconciliationReport, error) {
	product, err := ownedProduct(ctx, uc.productRepo, companyID, productID)
	if err != nil {
		return nil, err
	}
	batches, err := uc.batchRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	r := newReport(product, batches)
	return &r, nil
}

// ReportAll informe de todos los productos activos. companyID vacío = todas las empresas.
// onlyDrift filtra los productos cuadrados.
func (uc *ReconcileUseCase) ReportAll(ctx context.Context, companyID string, onlyDrift bool) ([]ReconciliationReport, error) {
	products, err := uc.productRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	reports := make([]ReconciliationReport, 0, len(products))
	for _, p := range products {
		batches, err := uc.batchRepo.ListActiveByProduct(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("listar lotes de %s: %w", p.ID, err)
		}
		r := newReport(p, batches)
		if onlyDrift && r.InSync() {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Apply fija current_stock = suma de lotes activos, con el producto bloqueado.
// companyID vacío solo lo usa la herramienta operativa (cmd/reconcile).
func (uc *ReconcileUseCase) Apply(ctx context.Context, companyID, userID, productID string) (*ReconciliationReport, error) {
	if companyID != "" {
		if userID == "" {
			return nil, domain.ErrUnauthorized
		}
		if _, err := ownedProduct(ctx, uc.productRepo, companyID, productID); err != nil {
			return nil, err
		}
	}

	release, err := uc.locker.Acquire(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer release()

	var report ReconciliationReport
	err = uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("bloquear producto: %w", err)
		}
		if product == nil {
			return domain.ErrNotFound
		}
		batches, err := batchRepo.ListActiveByProductForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("listar lotes: %w", err)
		}
		report = newReport(product, batches)
		if report.InSync() {
			return nil
		}
		if err := productRepo.UpdateStock(ctx, productID, report.BatchTotal); err != nil {
			return fmt.Errorf("actualizar stock del producto: %w", err)
		}
		report.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if report.Applied {
		uc.log.Info().
			Str("product_id", productID).
			Str("user_id", userID).
			Str("previous_stock", report.CurrentStock.String()).
			Str("batch_total", report.BatchTotal.String()).
			Str("drift", report.Drift.String()).
			Msg("stock conciliado con lotes")
	}
	return &report, nil
}

func newReport(p *entity.Product, batches []*entity.StockBatch) ReconciliationReport {
	total := inventory.SumActive(batches)
	active := 0
	for _, b := range batches {
		if b.IsAvailable() {
			active++
		}
	}
	return ReconciliationReport{
		ProductID:     p.ID,
		CompanyID:     p.CompanyID,
		ProductName:   p.Name,
		SKU:           p.SKU,
		Unit:          p.Unit,
		TrackExpiry:   p.TrackExpiry,
		CurrentStock:  p.CurrentStock,
		BatchTotal:    total,
		Drift:         p.CurrentStock.Sub(total),
		ActiveBatches: active,
	}
}
