package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// RegisterMovementUseCase registra movimientos de stock de forma transaccional: escribe el movimiento,
// crea o descuenta lotes (FIFO por caducidad) y actualiza el stock del producto, todo en una tx
// con bloqueo de fila (SELECT FOR UPDATE) y un bloqueo por producto delante.
type RegisterMovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	locker       ProductLocker
	idempotency  IdempotencyStore
	engine       *BatchEngine
	aggregate    *AggregateUpdater
	strict       bool
	log          *logger.Logger
	now          func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
// strict=true convierte una salida mayor que current_stock en ErrInsufficientStock.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	locker ProductLocker,
	aggregate *AggregateUpdater,
	strict bool,
	log *logger.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		locker:       locker,
		engine:       NewBatchEngine(),
		aggregate:    aggregate,
		strict:       strict,
		log:          log,
		now:          time.Now,
	}
}

// WithIdempotency activa la deduplicación por Idempotency-Key. Sin store la clave se ignora.
func (uc *RegisterMovementUseCase) WithIdempotency(store IdempotencyStore) *RegisterMovementUseCase {
	uc.idempotency = store
	return uc
}

// MovementInputDTO entrada para registrar un movimiento. CompanyID y UserID vienen del token.
// Quantity siempre positiva: la dirección la da Type.
type MovementInputDTO struct {
	CompanyID      string
	UserID         string
	ProductID      string
	LocationID     *string
	Type           string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      *decimal.Decimal
	SupplierID     *string
	BatchNumber    string
	ExpiryDate     *time.Time
	MovementDate   *time.Time // en compras también es la fecha de recepción del lote
	Reference      string
	Notes          string
	IdempotencyKey string
}

// MovementResult resultado de registrar un movimiento.
type MovementResult struct {
	Movement     *entity.StockMovement
	Batch        *entity.StockBatch           // lote creado (solo compras)
	Consumption  *inventory.ConsumptionResult // lotes descontados (solo salidas)
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	StockStatus  inventory.StockStatus
}

// RegisterMovement valida, bloquea el producto y ejecuta el movimiento en una transacción.
// Commit si todo ok, Rollback si algo falla (TxRunner.Run lo hace).
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (result *MovementResult, err error) {
	movType, err := uc.validate(input)
	if err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" && uc.idempotency != nil {
		key := input.CompanyID + ":" + input.IdempotencyKey
		reserved, reserveErr := uc.idempotency.Reserve(ctx, key)
		if reserveErr != nil {
			return nil, fmt.Errorf("reservar idempotency key: %w", reserveErr)
		}
		if !reserved {
			return nil, domain.ErrDuplicate
		}
		defer func() {
			if err != nil {
				_ = uc.idempotency.Forget(context.WithoutCancel(ctx), key)
			}
		}()
	}

	release, err := uc.locker.Acquire(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotObtained) {
			uc.log.Warn().Str("product_id", input.ProductID).Msg("producto ocupado, movimiento rechazado")
		}
		return nil, err
	}
	defer release()

	now := uc.now()
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		productRepo repository.ProductRepository,
	) error {
		var txErr error
		result, txErr = uc.apply(ctx, movRepo, batchRepo, productRepo, input, movType, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	uc.logResult(result)
	return result, nil
}

// RegisterBulk registra varios movimientos en una única transacción: o entran todos o ninguno.
// Los productos se bloquean en orden de ID para evitar interbloqueos entre lotes concurrentes.
func (uc *RegisterMovementUseCase) RegisterBulk(ctx context.Context, inputs []MovementInputDTO) ([]*MovementResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	types := make([]entity.MovementType, len(inputs))
	productIDs := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		t, err := uc.validate(in)
		if err != nil {
			return nil, fmt.Errorf("movimiento %d: %w", i, err)
		}
		if err := uc.checkReferences(ctx, in); err != nil {
			return nil, fmt.Errorf("movimiento %d: %w", i, err)
		}
		types[i] = t
		productIDs[in.ProductID] = struct{}{}
	}

	ordered := make([]string, 0, len(productIDs))
	for id := range productIDs {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	releases := make([]ReleaseFunc, 0, len(ordered))
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()
	for _, id := range ordered {
		release, err := uc.locker.Acquire(ctx, id)
		if err != nil {
			uc.log.Warn().Str("product_id", id).Int("bulk_size", len(inputs)).Msg("producto ocupado, lote de movimientos rechazado")
			return nil, err
		}
		releases = append(releases, release)
	}

	now := uc.now()
	results := make([]*MovementResult, 0, len(inputs))
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		productRepo repository.ProductRepository,
	) error {
		for i, in := range inputs {
			res, err := uc.apply(ctx, movRepo, batchRepo, productRepo, in, types[i], now)
			if err != nil {
				return fmt.Errorf("movimiento %d: %w", i, err)
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		uc.logResult(r)
	}
	return results, nil
}

// validate reglas que no necesitan almacenamiento. Sin actor autenticado no se toca nada.
func (uc *RegisterMovementUseCase) validate(input MovementInputDTO) (entity.MovementType, error) {
	if input.CompanyID == "" || input.UserID == "" {
		return "", domain.ErrUnauthorized
	}
	if input.ProductID == "" {
		return "", domain.ErrInvalidInput
	}
	movType, err := entity.ParseMovementType(input.Type)
	if err != nil {
		return "", err
	}
	if err := inventory.ValidateQuantity(input.Quantity); err != nil {
		return "", err
	}
	if input.UnitPrice != nil {
		if err := inventory.ValidateUnitPrice(*input.UnitPrice); err != nil {
			return "", err
		}
	}
	return movType, nil
}

// checkReferences producto y proveedor deben existir y ser de la empresa del usuario.
func (uc *RegisterMovementUseCase) checkReferences(ctx context.Context, input MovementInputDTO) error {
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return fmt.Errorf("buscar producto: %w", err)
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != input.CompanyID {
		return domain.ErrForbidden
	}
	if input.SupplierID != nil && *input.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(ctx, *input.SupplierID)
		if err != nil {
			return fmt.Errorf("buscar proveedor: %w", err)
		}
		if supplier == nil || supplier.CompanyID != input.CompanyID {
			return domain.ErrNotFound
		}
	}
	return nil
}

// apply ejecuta un movimiento con los repositorios de la transacción en curso.
func (uc *RegisterMovementUseCase) apply(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	productRepo repository.ProductRepository,
	input MovementInputDTO,
	movType entity.MovementType,
	now time.Time,
) (*MovementResult, error) {
	// Bloquea la fila del producto: serializa movimientos concurrentes del mismo producto
	product, err := productRepo.GetForUpdate(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("bloquear producto: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if uc.strict && movType.ConsumesBatches() && product.CurrentStock.LessThan(input.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	mov := newMovement(input, movType, product, now)
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("guardar movimiento: %w", err)
	}

	result := &MovementResult{Movement: mov}
	var allocations []entity.MovementAllocation
	switch {
	case movType.CreatesBatch():
		batch, err := uc.engine.ReceivePurchase(ctx, batchRepo, mov, mov.MovementDate, now)
		if err != nil {
			return nil, err
		}
		result.Batch = batch
		allocations = append(allocations, entity.MovementAllocation{MovementID: mov.ID, BatchID: batch.ID, Quantity: batch.Quantity})

		if mov.UnitPrice != nil {
			current := decimal.Zero
			if product.PurchasePrice != nil {
				current = *product.PurchasePrice
			}
			price := inventory.CostCalculator(product.CurrentStock, current, mov.Quantity, *mov.UnitPrice)
			if err := productRepo.UpdatePurchasePrice(ctx, product.ID, price); err != nil {
				return nil, fmt.Errorf("actualizar precio de compra: %w", err)
			}
			product.PurchasePrice = &price
		}
	case movType.ConsumesBatches():
		consumption, err := uc.engine.Deplete(ctx, batchRepo, product.ID, mov.Quantity, now)
		if err != nil {
			return nil, err
		}
		result.Consumption = &consumption
		for _, c := range consumption.Consumptions {
			allocations = append(allocations, entity.MovementAllocation{MovementID: mov.ID, BatchID: c.BatchID, Quantity: c.Quantity})
		}
	}
	if len(allocations) > 0 {
		if err := movRepo.CreateAllocations(ctx, allocations); err != nil {
			return nil, fmt.Errorf("guardar asignaciones de lote: %w", err)
		}
	}

	stock, err := uc.aggregate.Apply(ctx, productRepo, batchRepo, product, mov)
	if err != nil {
		return nil, err
	}
	result.CurrentStock = stock
	result.MinStock = product.MinStock
	result.StockStatus = inventory.StockStatusFor(stock, product.MinStock)
	return result, nil
}

func newMovement(input MovementInputDTO, movType entity.MovementType, product *entity.Product, now time.Time) *entity.StockMovement {
	movementDate := now
	if input.MovementDate != nil && !input.MovementDate.IsZero() {
		movementDate = *input.MovementDate
	}
	unit := input.Unit
	if unit == "" {
		unit = product.Unit
	}
	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		CompanyID:    input.CompanyID,
		UserID:       input.UserID,
		ProductID:    input.ProductID,
		LocationID:   input.LocationID,
		Type:         movType,
		Quantity:     input.Quantity,
		Unit:         unit,
		UnitPrice:    input.UnitPrice,
		SupplierID:   input.SupplierID,
		BatchNumber:  input.BatchNumber,
		ExpiryDate:   input.ExpiryDate,
		Reference:    input.Reference,
		Notes:        input.Notes,
		MovementDate: movementDate,
		CreatedAt:    now,
	}
	if input.UnitPrice != nil {
		total := inventory.LineTotal(input.Quantity, *input.UnitPrice)
		mov.TotalPrice = &total
	}
	return mov
}

func (uc *RegisterMovementUseCase) logResult(r *MovementResult) {
	if r.Consumption != nil && r.Consumption.Partial() {
		uc.log.Warn().
			Str("product_id", r.Movement.ProductID).
			Str("movement_id", r.Movement.ID).
			Str("type", r.Movement.Type.String()).
			Str("requested", r.Consumption.Requested.String()).
			Str("shortfall", r.Consumption.Shortfall.String()).
			Bool("legacy_mode", r.Consumption.LegacyMode).
			Msg("salida sin lotes suficientes")
	}
	uc.log.Debug().
		Str("product_id", r.Movement.ProductID).
		Str("movement_id", r.Movement.ID).
		Str("type", r.Movement.Type.String()).
		Str("quantity", r.Movement.Quantity.String()).
		Str("current_stock", r.CurrentStock.String()).
		Msg("movimiento registrado")
}
