package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/foodstock-api/pkg/config"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Integración contra PostgreSQL real. Se omite si DATABASE_TEST_URL está vacío.
// ──────────────────────────────────────────────────────────────────────────────

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_TEST_URL")
	if url == "" {
		t.Skip("DATABASE_TEST_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 5, LockTimeoutMs: 2000})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))
	// Idempotente: la segunda pasada no vuelve a aplicar nada
	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool) (companyID, productID string) {
	t.Helper()
	companyID, productID = uuid.NewString(), uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, company_id, name, sku, unit, min_stock, track_expiry)
		VALUES ($1, $2, 'Yogur', $3, 'un', 5, TRUE)`,
		productID, companyID, "YOG-"+productID[:8])
	require.NoError(t, err)
	return companyID, productID
}

func TestPostgres_CompraYVentaFIFO(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	companyID, productID := seedProduct(t, pool)

	uc := inventory.NewRegisterMovementUseCase(
		postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), postgres.NewSupplierRepository(pool),
		local.NewProductLocker(time.Second), inventory.NewAggregateUpdater(inventory.AggregateModeMovements),
		false, logger.Nop(),
	)
	in := func(typ, q string, expiry *time.Time) inventory.MovementInputDTO {
		return inventory.MovementInputDTO{
			CompanyID: companyID, UserID: "it-user", ProductID: productID,
			Type: typ, Quantity: decimal.RequireFromString(q), ExpiryDate: expiry,
		}
	}
	a := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	ra, err := uc.RegisterMovement(ctx, in("purchase", "10", &a))
	require.NoError(t, err)
	rb, err := uc.RegisterMovement(ctx, in("purchase", "10", &b))
	require.NoError(t, err)

	sale, err := uc.RegisterMovement(ctx, in("sale", "15", nil))
	require.NoError(t, err)
	require.Len(t, sale.Consumption.Consumptions, 2)
	assert.Equal(t, ra.Batch.ID, sale.Consumption.Consumptions[0].BatchID)
	assert.True(t, sale.Consumption.Consumptions[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, rb.Batch.ID, sale.Consumption.Consumptions[1].BatchID)
	assert.True(t, sale.CurrentStock.Equal(decimal.NewFromInt(5)))

	batches := postgres.NewStockBatchRepository(pool)
	active, err := batches.ListActiveByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, rb.Batch.ID, active[0].ID)
	assert.True(t, active[0].Quantity.Equal(decimal.NewFromInt(5)))

	gone, err := batches.GetByID(ctx, ra.Batch.ID)
	require.NoError(t, err)
	require.NotNil(t, gone, "los lotes agotados no se borran")
	assert.False(t, gone.IsActive)

	allocations, err := postgres.NewStockMovementRepository(pool).ListAllocations(ctx, sale.Movement.ID)
	require.NoError(t, err)
	assert.Len(t, allocations, 2)
}

func TestPostgres_UpdateConVersionVieja(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	companyID, productID := seedProduct(t, pool)

	uc := inventory.NewRegisterMovementUseCase(
		postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), postgres.NewSupplierRepository(pool),
		local.NewProductLocker(time.Second), inventory.NewAggregateUpdater(inventory.AggregateModeMovements),
		false, logger.Nop(),
	)
	res, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		CompanyID: companyID, UserID: "it-user", ProductID: productID,
		Type: "purchase", Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	repo := postgres.NewStockBatchRepository(pool)
	batch, err := repo.GetByID(ctx, res.Batch.ID)
	require.NoError(t, err)
	version := batch.Version

	batch.Quantity = decimal.NewFromInt(2)
	require.NoError(t, repo.Update(ctx, batch, version))
	assert.Equal(t, version+1, batch.Version)

	batch.Quantity = decimal.NewFromInt(1)
	assert.ErrorIs(t, repo.Update(ctx, batch, version), domain.ErrConflict)
}

func TestPostgres_IdNoUUIDEsEntradaInvalida(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	_, err := postgres.NewStockMovementRepository(pool).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = postgres.NewProductRepository(pool).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
