package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 200
)

// MovementQueryUseCase lectura del libro de movimientos.
type MovementQueryUseCase struct {
	movRepo repository.StockMovementRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movRepo repository.StockMovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo}
}

// MovementQuery filtros del listado. Type vacío = todos.
type MovementQuery struct {
	CompanyID string
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementDetail movimiento con los lotes que tocó.
type MovementDetail struct {
	Movement    *entity.StockMovement
	Allocations []entity.MovementAllocation
}

// List movimientos de la empresa, más recientes primero.
func (uc *MovementQueryUseCase) List(ctx context.Context, q MovementQuery) ([]*entity.StockMovement, error) {
	if q.CompanyID == "" {
		return nil, domain.ErrUnauthorized
	}
	filter := repository.MovementFilter{
		CompanyID: q.CompanyID,
		ProductID: q.ProductID,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Type != "" {
		t, err := entity.ParseMovementType(q.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = t
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	return list, nil
}

// Get movimiento por ID con sus asignaciones de lote.
func (uc *MovementQueryUseCase) Get(ctx context.Context, companyID, movementID string) (*MovementDetail, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	mov, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("buscar movimiento: %w", err)
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if mov.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	allocations, err := uc.movRepo.ListAllocations(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("listar asignaciones: %w", err)
	}
	return &MovementDetail{Movement: mov, Allocations: allocations}, nil
}
