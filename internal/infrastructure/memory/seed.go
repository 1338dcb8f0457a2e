package memory

import (
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IDs fijos del catálogo demo, para usarlos directamente en las peticiones.
const (
	DemoCompanyID  = "c0a10000-0000-4000-8000-000000000001"
	DemoSupplierID = "5b1c0000-0000-4000-8000-000000000001"
	DemoMilkID     = "7a2d0000-0000-4000-8000-000000000001"
	DemoFlourID    = "7a2d0000-0000-4000-8000-000000000002"
)

// SeedDemo carga un catálogo mínimo para probar la API con STORAGE=memory.
func SeedDemo(s *Store, companyID string) {
	now := time.Now().UTC()
	reorder := decimal.NewFromInt(20)
	s.AddSupplier(&entity.Supplier{
		ID: DemoSupplierID, CompanyID: companyID, Name: "Lácteos del Valle", IsActive: true, CreatedAt: now,
	})
	s.AddProduct(&entity.Product{
		ID: DemoMilkID, CompanyID: companyID, Name: "Leche entera", SKU: "LEC-001",
		Unit: "l", CurrentStock: decimal.Zero, MinStock: decimal.NewFromInt(10), ReorderQuantity: &reorder,
		TrackExpiry: true, DefaultSupplierID: strPtr(DemoSupplierID), IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	s.AddProduct(&entity.Product{
		ID: DemoFlourID, CompanyID: companyID, Name: "Harina de trigo", SKU: "HAR-001",
		Unit: "kg", CurrentStock: decimal.Zero, MinStock: decimal.NewFromInt(25),
		TrackExpiry: false, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
}

func strPtr(s string) *string { return &s }
