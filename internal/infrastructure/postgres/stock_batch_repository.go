package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

const batchColumns = `b.id, b.product_id, b.location_id, COALESCE(b.batch_number, ''), b.quantity, b.expiry_date,
	b.purchase_date, b.supplier_id, b.unit_price, b.is_active, b.version, b.created_at, b.updated_at`

// Orden de consumo: caduca antes primero, sin caducidad al final, luego el más antiguo.
const fifoOrder = `ORDER BY b.expiry_date ASC NULLS LAST, b.purchase_date ASC, b.created_at ASC, b.id ASC`

func scanBatch(row pgx.Row, extra ...any) (*entity.StockBatch, error) {
	var b entity.StockBatch
	dest := []any{
		&b.ID, &b.ProductID, &b.LocationID, &b.BatchNumber, &b.Quantity, &b.ExpiryDate,
		&b.PurchaseDate, &b.SupplierID, &b.UnitPrice, &b.IsActive, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote nuevo.
func (r *StockBatchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches (id, product_id, location_id, batch_number, quantity, expiry_date, purchase_date,
			supplier_id, unit_price, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.ProductID, batch.LocationID, batch.BatchNumber, batch.Quantity, batch.ExpiryDate, batch.PurchaseDate,
		batch.SupplierID, batch.UnitPrice, batch.IsActive, batch.Version, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert stock batch", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *StockBatchRepo) GetByID(ctx context.Context, id string) (*entity.StockBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM stock_batches b WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapReadError("get stock batch", err)
	}
	return b, nil
}

// ListActiveByProduct lotes disponibles en orden de consumo.
func (r *StockBatchRepo) ListActiveByProduct(ctx context.Context, productID string) ([]*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stock_batches b
		WHERE b.product_id = $1 AND b.is_active AND b.quantity > 0 ` + fifoOrder
	return r.list(ctx, query, productID)
}

// ListActiveByProductForUpdate igual que ListActiveByProduct bloqueando las filas (SELECT FOR UPDATE).
func (r *StockBatchRepo) ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stock_batches b
		WHERE b.product_id = $1 AND b.is_active AND b.quantity > 0 ` + fifoOrder + ` FOR UPDATE`
	list, err := r.list(ctx, query, productID)
	if err != nil && pgCode(err) == pgLockNotAvailable {
		return nil, domain.ErrLockNotObtained
	}
	return list, err
}

// UpdateQuantity fija la cantidad restante; is_active se deriva de ella y version se incrementa.
func (r *StockBatchRepo) UpdateQuantity(ctx context.Context, batch *entity.StockBatch) error {
	err := r.q.QueryRow(ctx, `
		UPDATE stock_batches
		SET quantity = $2, is_active = $2 > 0, updated_at = $3, version = version + 1
		WHERE id = $1
		RETURNING is_active, version`,
		batch.ID, batch.Quantity, batch.UpdatedAt,
	).Scan(&batch.IsActive, &batch.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapWriteError("update stock batch quantity", err)
	}
	return nil
}

// Update corrección manual con control optimista: solo aplica si version = expectedVersion.
func (r *StockBatchRepo) Update(ctx context.Context, batch *entity.StockBatch, expectedVersion int64) error {
	err := r.q.QueryRow(ctx, `
		UPDATE stock_batches
		SET quantity = $3, is_active = $3 > 0, batch_number = NULLIF($4, ''), expiry_date = $5,
			supplier_id = $6, unit_price = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING is_active, version`,
		batch.ID, expectedVersion, batch.Quantity, batch.BatchNumber, batch.ExpiryDate,
		batch.SupplierID, batch.UnitPrice, batch.UpdatedAt,
	).Scan(&batch.IsActive, &batch.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := r.GetByID(ctx, batch.ID)
			if getErr != nil {
				return getErr
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			return domain.ErrConflict
		}
		return mapWriteError("update stock batch", err)
	}
	return nil
}

// SumActiveByProduct suma de cantidades de los lotes activos.
func (r *StockBatchRepo) SumActiveByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_batches WHERE product_id = $1 AND is_active AND quantity > 0`,
		productID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, mapReadError("sum active batches", err)
	}
	return total, nil
}

// ListExpiring lotes activos de la empresa con caducidad <= until, el más próximo primero.
func (r *StockBatchRepo) ListExpiring(ctx context.Context, companyID string, until time.Time, limit int) ([]repository.ExpiringBatch, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + batchColumns + `, p.name, p.unit
		FROM stock_batches b
		JOIN products p ON p.id = b.product_id
		WHERE p.company_id = $1 AND b.is_active AND b.quantity > 0
			AND b.expiry_date IS NOT NULL AND b.expiry_date <= $2
		ORDER BY b.expiry_date ASC, b.id ASC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, companyID, until, limit)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	defer rows.Close()
	var list []repository.ExpiringBatch
	for rows.Next() {
		var name, unit string
		b, err := scanBatch(rows, &name, &unit)
		if err != nil {
			return nil, fmt.Errorf("scan expiring batch: %w", err)
		}
		list = append(list, repository.ExpiringBatch{Batch: *b, ProductName: name, Unit: unit})
	}
	return list, rows.Err()
}

func (r *StockBatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapReadError("list stock batches", err)
	}
	defer rows.Close()
	var list []*entity.StockBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
