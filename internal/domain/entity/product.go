package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo (colaborador externo del motor de lotes).
// CurrentStock es un total desnormalizado mantenido por el actualizador de agregados.
type Product struct {
	ID                string
	CompanyID         string
	Name              string
	SKU               string
	Unit              string
	CurrentStock      decimal.Decimal
	MinStock          decimal.Decimal
	ReorderQuantity   *decimal.Decimal
	PurchasePrice     *decimal.Decimal
	SellingPrice      *decimal.Decimal
	TrackExpiry       bool
	DefaultSupplierID *string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
