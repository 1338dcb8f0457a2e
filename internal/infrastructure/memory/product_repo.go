package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductRepo implementa repository.ProductRepository en memoria.
type ProductRepo struct {
	s  *Store
	tx bool
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(p), nil
}

// GetForUpdate equivale a GetByID: las transacciones ya están serializadas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock decimal.Decimal) error {
	r.s.write(r.tx, func() {
		if p, ok := r.s.products[productID]; ok {
			p.CurrentStock = stock
		}
	})
	return nil
}

func (r *ProductRepo) UpdatePurchasePrice(_ context.Context, productID string, price decimal.Decimal) error {
	r.s.write(r.tx, func() {
		if p, ok := r.s.products[productID]; ok {
			p.PurchasePrice = &price
		}
	})
	return nil
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if !p.IsActive || (companyID != "" && p.CompanyID != companyID) {
			continue
		}
		list = append(list, copyProduct(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *ProductRepo) ListBelowMinStock(ctx context.Context, companyID string) ([]*entity.Product, error) {
	all, err := r.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Product, 0)
	for _, p := range all {
		if p.MinStock.GreaterThan(decimal.Zero) && p.CurrentStock.LessThanOrEqual(p.MinStock) {
			list = append(list, p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].MinStock.Sub(list[i].CurrentStock).GreaterThan(list[j].MinStock.Sub(list[j].CurrentStock))
	})
	return list, nil
}

// SupplierRepo implementa repository.SupplierRepository en memoria.
type SupplierRepo struct {
	s *Store
}

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	c := *sup
	return &c, nil
}
