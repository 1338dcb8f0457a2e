package repository

import (
	"context"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository puerto hacia el catálogo de productos (colaborador externo).
// Solo expone lo que necesitan el motor de lotes y el actualizador de agregados.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE): serializa movimientos por producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error
	UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error
	// ListByCompany productos activos; companyID vacío = todas las empresas (uso operativo).
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
	// ListBelowMinStock productos activos con min_stock > 0 y current_stock <= min_stock, mayor déficit primero.
	ListBelowMinStock(ctx context.Context, companyID string) ([]*entity.Product, error)
}
