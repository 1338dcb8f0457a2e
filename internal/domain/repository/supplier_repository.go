package repository

import (
	"context"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
)

// SupplierRepository directorio de proveedores (solo consulta).
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}
