package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote recibido de un producto (trazabilidad de caducidad y proveedor).
// Nunca se elimina: al llegar a cantidad cero queda inactivo y se conserva para auditoría.
type StockBatch struct {
	ID           string
	ProductID    string
	LocationID   *string // esquema inerte (multi-ubicación fuera de alcance)
	BatchNumber  string
	Quantity     decimal.Decimal // cantidad restante, nunca negativa
	ExpiryDate   *time.Time      // nil = sin caducidad, va al final del orden FIFO
	PurchaseDate time.Time       // fecha de recepción
	SupplierID   *string
	UnitPrice    *decimal.Decimal
	IsActive     bool
	Version      int64 // control optimista para correcciones manuales
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAvailable lote elegible para consumo FIFO.
func (b *StockBatch) IsAvailable() bool {
	return b.IsActive && b.Quantity.GreaterThan(decimal.Zero)
}

// SetQuantity fija la cantidad y recalcula is_active (activo solo con cantidad > 0).
func (b *StockBatch) SetQuantity(q decimal.Decimal, now time.Time) {
	b.Quantity = q
	b.IsActive = q.GreaterThan(decimal.Zero)
	b.UpdatedAt = now
}

// Value valor del lote al costo de compra; cero si no hay costo conocido.
func (b *StockBatch) Value() decimal.Decimal {
	if b.UnitPrice == nil {
		return decimal.Zero
	}
	return b.Quantity.Mul(*b.UnitPrice)
}
