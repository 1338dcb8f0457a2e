package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

// MovementRepo implementa repository.StockMovementRepository en memoria (append-only).
type MovementRepo struct {
	s  *Store
	tx bool
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	var err error
	r.s.write(r.tx, func() {
		for _, m := range r.s.movements {
			if m.ID == movement.ID {
				err = domain.ErrDuplicate
				return
			}
		}
		r.s.movements = append(r.s.movements, copyMovement(movement))
	})
	return err
}

func (r *MovementRepo) CreateAllocations(_ context.Context, allocations []entity.MovementAllocation) error {
	r.s.write(r.tx, func() {
		r.s.allocations = append(r.s.allocations, allocations...)
	})
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			return copyMovement(m), nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListAllocations(_ context.Context, movementID string) ([]entity.MovementAllocation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]entity.MovementAllocation, 0)
	for _, a := range r.s.allocations {
		if a.MovementID == movementID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.CompanyID != f.CompanyID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.MovementDate.Before(*f.From) {
			continue
		}
		if f.To != nil && m.MovementDate.After(*f.To) {
			continue
		}
		list = append(list, copyMovement(m))
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].MovementDate.Equal(list[j].MovementDate) {
			return list[i].MovementDate.After(list[j].MovementDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset >= len(list) {
		return []*entity.StockMovement{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}
