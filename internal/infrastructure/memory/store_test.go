package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/memory"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	memory.SeedDemo(s, memory.DemoCompanyID)
	return s
}

func newBatch(id string, qty string, expiry *time.Time) *entity.StockBatch {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entity.StockBatch{
		ID: id, ProductID: memory.DemoMilkID, Quantity: decimal.RequireFromString(qty),
		ExpiryDate: expiry, PurchaseDate: now, IsActive: true, Version: 1, CreatedAt: now, UpdatedAt: now,
	}
}

func TestTxRunner_ErrorDescartaCambios(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		productRepo repository.ProductRepository,
	) error {
		require.NoError(t, batchRepo.Create(ctx, newBatch("b1", "5", nil)))
		require.NoError(t, productRepo.UpdateStock(ctx, memory.DemoMilkID, decimal.NewFromInt(5)))
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{
			ID: "m1", CompanyID: memory.DemoCompanyID, ProductID: memory.DemoMilkID,
			Type: entity.MovementTypePurchase, Quantity: decimal.NewFromInt(5),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := s.Batches().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, b, "el lote creado en la transacción fallida no existe")

	p, err := s.Products().GetByID(ctx, memory.DemoMilkID)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero())

	m, err := s.Movements().GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTxRunner_ContextoCanceladoNoEjecuta(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewTxRunner(s).Run(ctx, func(repository.StockMovementRepository, repository.StockBatchRepository, repository.ProductRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBatchRepo_OrdenDeConsumoYVersion(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	d := func(day int) *time.Time {
		v := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
		return &v
	}
	s.AddBatch(newBatch("sin", "1", nil))
	s.AddBatch(newBatch("tarde", "1", d(20)))
	s.AddBatch(newBatch("pronto", "1", d(5)))

	list, err := s.Batches().ListActiveByProduct(ctx, memory.DemoMilkID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"pronto", "tarde", "sin"}, []string{list[0].ID, list[1].ID, list[2].ID})

	b := list[0]
	b.Quantity = decimal.Zero
	require.NoError(t, s.Batches().Update(ctx, b, 1))
	assert.False(t, b.IsActive, "cantidad cero desactiva el lote")
	assert.Equal(t, int64(2), b.Version)

	assert.ErrorIs(t, s.Batches().Update(ctx, b, 1), domain.ErrConflict)
	assert.ErrorIs(t, s.Batches().Update(ctx, newBatch("nada", "1", nil), 1), domain.ErrNotFound)

	total, err := s.Batches().SumActiveByProduct(ctx, memory.DemoMilkID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(2)))
}

func TestProductRepo_BajoMinimo(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	require.NoError(t, s.Products().UpdateStock(ctx, memory.DemoFlourID, decimal.NewFromInt(30)))

	list, err := s.Products().ListBelowMinStock(ctx, memory.DemoCompanyID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, memory.DemoMilkID, list[0].ID, "harina 30 > mínimo 25 no aparece")
}

func TestBatchRepo_ListExpiringFiltraEmpresaYFecha(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	at := func(day int) *time.Time {
		v := time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC)
		return &v
	}
	s.AddProduct(&entity.Product{ID: "otro", CompanyID: "otra-empresa", Name: "Queso", Unit: "kg", IsActive: true})
	ajeno := newBatch("ajeno", "1", at(2))
	ajeno.ProductID = "otro"
	s.AddBatch(ajeno)
	s.AddBatch(newBatch("b10", "1", at(10)))
	s.AddBatch(newBatch("b3", "1", at(3)))
	s.AddBatch(newBatch("lejano", "1", at(28)))
	s.AddBatch(newBatch("sin", "1", nil))

	list, err := s.Batches().ListExpiring(ctx, memory.DemoCompanyID, *at(10), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b3", list[0].Batch.ID)
	assert.Equal(t, "b10", list[1].Batch.ID, "el límite es inclusivo")
	assert.Equal(t, "Leche entera", list[0].ProductName)

	list, err = s.Batches().ListExpiring(ctx, memory.DemoCompanyID, *at(28), 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
