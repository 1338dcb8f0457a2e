package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BatchRepo implementa repository.StockBatchRepository en memoria.
type BatchRepo struct {
	s  *Store
	tx bool
}

var _ repository.StockBatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	var err error
	r.s.write(r.tx, func() {
		if _, ok := r.s.batches[batch.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		r.s.batches[batch.ID] = copyBatch(batch)
	})
	return err
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.StockBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	return copyBatch(b), nil
}

func (r *BatchRepo) ListActiveByProduct(_ context.Context, productID string) ([]*entity.StockBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockBatch, 0)
	for _, b := range r.s.batches {
		if b.ProductID == productID && b.IsAvailable() {
			list = append(list, copyBatch(b))
		}
	}
	inventory.SortForConsumption(list)
	return list, nil
}

func (r *BatchRepo) ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockBatch, error) {
	return r.ListActiveByProduct(ctx, productID)
}

func (r *BatchRepo) UpdateQuantity(_ context.Context, batch *entity.StockBatch) error {
	var err error
	r.s.write(r.tx, func() {
		stored, ok := r.s.batches[batch.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		stored.Quantity = batch.Quantity
		stored.IsActive = batch.Quantity.GreaterThan(decimal.Zero)
		stored.UpdatedAt = batch.UpdatedAt
		stored.Version++
		batch.IsActive = stored.IsActive
		batch.Version = stored.Version
	})
	return err
}

func (r *BatchRepo) Update(_ context.Context, batch *entity.StockBatch, expectedVersion int64) error {
	var err error
	r.s.write(r.tx, func() {
		stored, ok := r.s.batches[batch.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if stored.Version != expectedVersion {
			err = domain.ErrConflict
			return
		}
		c := copyBatch(batch)
		c.IsActive = c.Quantity.GreaterThan(decimal.Zero)
		c.Version = expectedVersion + 1
		c.CreatedAt = stored.CreatedAt
		r.s.batches[batch.ID] = c
		batch.IsActive = c.IsActive
		batch.Version = c.Version
	})
	return err
}

func (r *BatchRepo) SumActiveByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, b := range r.s.batches {
		if b.ProductID == productID && b.IsAvailable() {
			total = total.Add(b.Quantity)
		}
	}
	return total, nil
}

func (r *BatchRepo) ListExpiring(_ context.Context, companyID string, until time.Time, limit int) ([]repository.ExpiringBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]repository.ExpiringBatch, 0)
	for _, b := range r.s.batches {
		if !b.IsAvailable() || b.ExpiryDate == nil || b.ExpiryDate.After(until) {
			continue
		}
		p, ok := r.s.products[b.ProductID]
		if !ok || p.CompanyID != companyID {
			continue
		}
		list = append(list, repository.ExpiringBatch{Batch: *b, ProductName: p.Name, Unit: p.Unit})
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Batch, list[j].Batch
		if !a.ExpiryDate.Equal(*b.ExpiryDate) {
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
