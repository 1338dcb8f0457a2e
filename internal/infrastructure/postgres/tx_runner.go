package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner abre una transacción READ COMMITTED por operación de inventario y entrega al callback
// los repositorios de movimientos, lotes y productos atados a ella.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// Run hace Commit si fn termina sin error y Rollback en cualquier otro caso (incluido ctx cancelado).
// Los errores de fn se devuelven tal cual; los de begin/commit se envuelven.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	productRepo repository.ProductRepository,
) error) error {
	var fnErr error
	err := pgx.BeginTxFunc(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		fnErr = fn(NewStockMovementRepository(tx), NewStockBatchRepository(tx), NewProductRepository(tx))
		return fnErr
	})
	if err != nil && fnErr == nil {
		return mapLockError("transacción de inventario", err)
	}
	return err
}
