package repository

import (
	"context"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos (todos opcionales salvo CompanyID).
type MovementFilter struct {
	CompanyID string
	ProductID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository puerto del libro de movimientos. Append-only: no expone update ni delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	CreateAllocations(ctx context.Context, allocations []entity.MovementAllocation) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	ListAllocations(ctx context.Context, movementID string) ([]entity.MovementAllocation, error)
	// List ordena por movement_date descendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
