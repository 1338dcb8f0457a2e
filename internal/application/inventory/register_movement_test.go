package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_CompraCreaUnLote(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	in := purchase("12.5", datePtr(2025, 1, 20), datePtr(2025, 1, 2))
	price := d("2.40")
	sup := supplier
	in.UnitPrice = &price
	in.SupplierID = &sup
	in.BatchNumber = "L-77"

	res, err := f.register.RegisterMovement(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, res.Batch)
	assert.Nil(t, res.Consumption)

	batches := f.activeBatches(t, prodLeche)
	require.Len(t, batches, 1)
	b := batches[0]
	assert.Equal(t, res.Batch.ID, b.ID)
	assert.True(t, b.Quantity.Equal(d("12.5")))
	assert.Equal(t, "L-77", b.BatchNumber)
	assert.Equal(t, *datePtr(2025, 1, 2), b.PurchaseDate)
	assert.Equal(t, datePtr(2025, 1, 20), b.ExpiryDate)
	assert.True(t, b.UnitPrice.Equal(price))

	assert.True(t, res.Movement.TotalPrice.Equal(d("30")), "total = cantidad × precio")
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("12.5")))

	detail, err := f.queries.Get(ctx, companyA, res.Movement.ID)
	require.NoError(t, err)
	require.Len(t, detail.Allocations, 1)
	assert.Equal(t, b.ID, detail.Allocations[0].BatchID)
}

func TestRegisterMovement_OtrasEntradasNoCreanLotes(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	for _, typ := range []string{"adjustment_plus", "transfer_in", "return_customer", "inventory_count"} {
		res, err := f.register.RegisterMovement(context.Background(), movement(typ, "1"))
		require.NoError(t, err, typ)
		assert.Nil(t, res.Batch, typ)
		assert.Nil(t, res.Consumption, typ)
	}
	assert.Empty(t, f.activeBatches(t, prodLeche))
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("4")), "modo movements suma igual")
}

func TestRegisterMovement_CompraActualizaCostoPromedio(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	first := purchase("10", nil, nil)
	p1 := d("2")
	first.UnitPrice = &p1
	_, err := f.register.RegisterMovement(ctx, first)
	require.NoError(t, err)

	second := purchase("10", nil, nil)
	p2 := d("4")
	second.UnitPrice = &p2
	_, err = f.register.RegisterMovement(ctx, second)
	require.NoError(t, err)

	p := f.product(t, prodLeche)
	require.NotNil(t, p.PurchasePrice)
	assert.True(t, p.PurchasePrice.Equal(d("3")), "promedio ponderado, obtenido %s", p.PurchasePrice)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas FIFO
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_VentaConsumePorCaducidad(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	_, err := f.register.RegisterMovement(ctx, purchase("10", datePtr(2025, 1, 10), datePtr(2025, 1, 1)))
	require.NoError(t, err)
	_, err = f.register.RegisterMovement(ctx, purchase("10", datePtr(2025, 1, 5), datePtr(2025, 1, 2)))
	require.NoError(t, err)

	res, err := f.register.RegisterMovement(ctx, movement("sale", "15"))
	require.NoError(t, err)
	require.NotNil(t, res.Consumption)
	c := res.Consumption.Consumptions
	require.Len(t, c, 2)
	assert.Equal(t, *datePtr(2025, 1, 5), *c[0].ExpiryDate)
	assert.True(t, c[0].Quantity.Equal(d("10")))
	assert.True(t, c[0].Exhausted)
	assert.Equal(t, *datePtr(2025, 1, 10), *c[1].ExpiryDate)
	assert.True(t, c[1].Quantity.Equal(d("5")))

	active := f.activeBatches(t, prodLeche)
	require.Len(t, active, 1)
	assert.True(t, active[0].Quantity.Equal(d("5")))
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("5")))
	assert.Equal(t, "low", string(res.StockStatus), "stock 5 con mínimo 5 queda bajo")
}

func TestRegisterMovement_FaltanteNoBloqueaEnModoLeniente(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	_, err := f.register.RegisterMovement(ctx, purchase("3", nil, nil))
	require.NoError(t, err)

	res, err := f.register.RegisterMovement(ctx, movement("waste", "10"))
	require.NoError(t, err)
	assert.True(t, res.Consumption.Partial())
	assert.True(t, res.Consumption.Consumed.Equal(d("3")))
	assert.True(t, res.Consumption.Shortfall.Equal(d("7")))
	assert.True(t, res.CurrentStock.Equal(d("-7")), "en modo movements el agregado refleja la salida completa")
	assert.Equal(t, "out", string(res.StockStatus))
}

func TestRegisterMovement_SinLotesEsModoLegacy(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	_, err := f.register.RegisterMovement(context.Background(), movement("adjustment_plus", "5"))
	require.NoError(t, err)

	res, err := f.register.RegisterMovement(context.Background(), movement("sale", "2"))
	require.NoError(t, err)
	assert.True(t, res.Consumption.LegacyMode)
	assert.True(t, res.CurrentStock.Equal(d("3")))
}

func TestRegisterMovement_ModoEstrictoRechazaYNoDejaRastro(t *testing.T) {
	f := newFixture(t, fixtureOpts{strict: true})
	ctx := context.Background()

	_, err := f.register.RegisterMovement(ctx, purchase("2", nil, nil))
	require.NoError(t, err)

	_, err = f.register.RegisterMovement(ctx, movement("sale", "5"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Len(t, f.movements(t), 1, "la salida rechazada no queda en el libro")
	assert.True(t, f.activeBatches(t, prodLeche)[0].Quantity.Equal(d("2")))
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("2")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_Rechazos(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	sinUsuario := movement("sale", "1")
	sinUsuario.UserID = ""
	_, err := f.register.RegisterMovement(ctx, sinUsuario)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.register.RegisterMovement(ctx, movement("robo", "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	_, err = f.register.RegisterMovement(ctx, movement("sale", "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.register.RegisterMovement(ctx, movement("sale", "1.0005"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	ajeno := movement("sale", "1")
	ajeno.ProductID = prodAjeno
	_, err = f.register.RegisterMovement(ctx, ajeno)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	inexistente := movement("sale", "1")
	inexistente.ProductID = "no-existe"
	_, err = f.register.RegisterMovement(ctx, inexistente)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	precioLargo := purchase("1", nil, nil)
	p := d("2.50001")
	precioLargo.UnitPrice = &p
	_, err = f.register.RegisterMovement(ctx, precioLargo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	otroProveedor := purchase("1", nil, nil)
	sup := "sup-desconocido"
	otroProveedor.SupplierID = &sup
	_, err = f.register.RegisterMovement(ctx, otroProveedor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, f.movements(t), "ningún rechazo escribe en el libro")
}

func TestRegisterMovement_IdempotencyKey(t *testing.T) {
	f := newFixture(t, fixtureOpts{strict: true})
	f.register.WithIdempotency(local.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	in := purchase("1", nil, nil)
	in.IdempotencyKey = "abc"
	_, err := f.register.RegisterMovement(ctx, in)
	require.NoError(t, err)
	_, err = f.register.RegisterMovement(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Un fallo libera la clave para que el cliente pueda reintentar
	out := movement("sale", "5")
	out.IdempotencyKey = "def"
	_, err = f.register.RegisterMovement(ctx, out)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	out.Quantity = d("1")
	_, err = f.register.RegisterMovement(ctx, out)
	assert.NoError(t, err)
}

func TestRegisterMovement_ProductoOcupado(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	busy := local.NewProductLocker(20 * time.Millisecond)
	uc := inventory.NewRegisterMovementUseCase(
		memoryTx(f), f.store.Products(), f.store.Suppliers(), busy,
		inventory.NewAggregateUpdater(inventory.AggregateModeMovements), false, nopLog(),
	)
	release, err := busy.Acquire(ctx, prodLeche)
	require.NoError(t, err)
	defer release()

	_, err = uc.RegisterMovement(ctx, movement("sale", "1"))
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
}

func TestRegisterMovement_ReintentoTrasProductoOcupadoConMismaClave(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	busy := local.NewProductLocker(20 * time.Millisecond)
	uc := inventory.NewRegisterMovementUseCase(
		memoryTx(f), f.store.Products(), f.store.Suppliers(), busy,
		inventory.NewAggregateUpdater(inventory.AggregateModeMovements), false, nopLog(),
	).WithIdempotency(local.NewIdempotencyStore(time.Hour))

	in := purchase("4", nil, nil)
	in.IdempotencyKey = "reintento"

	release, err := busy.Acquire(ctx, prodLeche)
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, in)
	require.ErrorIs(t, err, domain.ErrLockNotObtained)
	release()

	res, err := uc.RegisterMovement(ctx, in)
	require.NoError(t, err, "la clave de un intento rechazado queda libre")
	require.NotNil(t, res.Batch)
	assert.Len(t, f.movements(t), 1)

	_, err = uc.RegisterMovement(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "tras el éxito la clave queda tomada")
	assert.Len(t, f.movements(t), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Modo de agregado por lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_ModoLotesRecalculaDesdeLotes(t *testing.T) {
	f := newFixture(t, fixtureOpts{mode: inventory.AggregateModeBatches})
	ctx := context.Background()

	_, err := f.register.RegisterMovement(ctx, purchase("4", nil, nil))
	require.NoError(t, err)
	res, err := f.register.RegisterMovement(ctx, movement("adjustment_plus", "3"))
	require.NoError(t, err)
	assert.True(t, res.CurrentStock.Equal(d("4")), "un ajuste sin lote no cambia la suma de lotes")

	res, err = f.register.RegisterMovement(ctx, movement("sale", "10"))
	require.NoError(t, err)
	assert.True(t, res.CurrentStock.IsZero(), "nunca negativo en modo lotes")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y lotes de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	_, err := f.register.RegisterMovement(ctx, purchase("10", nil, nil))
	require.NoError(t, err)

	const workers = 25
	var wg sync.WaitGroup
	consumed := make(chan decimal.Decimal, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.register.RegisterMovement(ctx, movement("sale", "1"))
			if err != nil {
				errs <- err
				return
			}
			consumed <- res.Consumption.Consumed
		}()
	}
	wg.Wait()
	close(consumed)
	close(errs)

	for err := range errs {
		t.Fatalf("error inesperado: %v", err)
	}
	total := decimal.Zero
	for c := range consumed {
		total = total.Add(c)
	}
	assert.True(t, total.Equal(d("10")), "se consumió %s de un lote de 10", total)
	assert.Empty(t, f.activeBatches(t, prodLeche))
	assert.Len(t, f.movements(t), workers+1)
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("-15")))
}

func TestRegisterBulk_TodoONada(t *testing.T) {
	f := newFixture(t, fixtureOpts{strict: true})
	ctx := context.Background()

	results, err := f.register.RegisterBulk(ctx, []inventory.MovementInputDTO{
		purchase("5", nil, nil),
		movement("sale", "2"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[1].CurrentStock.Equal(d("3")), "la segunda ve el efecto de la primera")

	_, err = f.register.RegisterBulk(ctx, []inventory.MovementInputDTO{
		purchase("1", nil, nil),
		movement("sale", "50"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, f.movements(t), 2, "el lote fallido no deja movimientos")
	assert.True(t, f.product(t, prodLeche).CurrentStock.Equal(d("3")))
	assert.Len(t, f.activeBatches(t, prodLeche), 1)

	_, err = f.register.RegisterBulk(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
