package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture compartido: store en memoria + bloqueo local
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyA  = "company-a"
	companyB  = "company-b"
	userA     = "user-a"
	prodLeche = "prod-leche"
	prodAjeno = "prod-ajeno"
	supplier  = "sup-1"
)

type fixture struct {
	store     *memory.Store
	locker    *local.ProductLocker
	register  *inventory.RegisterMovementUseCase
	batches   *inventory.BatchUseCase
	reconcile *inventory.ReconcileUseCase
	queries   *inventory.MovementQueryUseCase
}

type fixtureOpts struct {
	strict bool
	mode   inventory.AggregateMode
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	if opts.mode == "" {
		opts.mode = inventory.AggregateModeMovements
	}
	store := memory.NewStore()
	store.AddProduct(&entity.Product{
		ID: prodLeche, CompanyID: companyA, Name: "Leche", SKU: "LEC", Unit: "l",
		CurrentStock: decimal.Zero, MinStock: decimal.NewFromInt(5), TrackExpiry: true, IsActive: true,
	})
	store.AddProduct(&entity.Product{
		ID: prodAjeno, CompanyID: companyB, Name: "Ajeno", SKU: "AJ", Unit: "kg",
		CurrentStock: decimal.Zero, IsActive: true,
	})
	store.AddSupplier(&entity.Supplier{ID: supplier, CompanyID: companyA, Name: "Granja", IsActive: true})

	locker := local.NewProductLocker(2 * time.Second)
	tx := memory.NewTxRunner(store)
	log := logger.Nop()
	return &fixture{
		store:  store,
		locker: locker,
		register: inventory.NewRegisterMovementUseCase(
			tx, store.Products(), store.Suppliers(), locker,
			inventory.NewAggregateUpdater(opts.mode), opts.strict, log,
		),
		batches:   inventory.NewBatchUseCase(store.Batches(), store.Products(), store.Suppliers(), log),
		reconcile: inventory.NewReconcileUseCase(tx, store.Products(), store.Batches(), locker, log),
		queries:   inventory.NewMovementQueryUseCase(store.Movements()),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func datePtr(y int, m time.Month, day int) *time.Time {
	t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func movement(typ, q string) inventory.MovementInputDTO {
	return inventory.MovementInputDTO{
		CompanyID: companyA,
		UserID:    userA,
		ProductID: prodLeche,
		Type:      typ,
		Quantity:  d(q),
	}
}

func purchase(q string, expiry *time.Time, received *time.Time) inventory.MovementInputDTO {
	in := movement("purchase", q)
	in.ExpiryDate = expiry
	in.MovementDate = received
	return in
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) activeBatches(t *testing.T, productID string) []*entity.StockBatch {
	t.Helper()
	list, err := f.store.Batches().ListActiveByProduct(context.Background(), productID)
	require.NoError(t, err)
	return list
}

func (f *fixture) movements(t *testing.T) []*entity.StockMovement {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), repository.MovementFilter{CompanyID: companyA})
	require.NoError(t, err)
	return list
}

func memoryTx(f *fixture) inventory.TxRunner { return memory.NewTxRunner(f.store) }

func nopLog() *logger.Logger { return logger.Nop() }
