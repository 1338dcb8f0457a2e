package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement registro inmutable de un evento que afecta al stock (libro de movimientos append-only).
// Quantity siempre es positiva; la dirección se deriva de Type.
type StockMovement struct {
	ID           string
	CompanyID    string
	UserID       string
	ProductID    string
	LocationID   *string
	Type         MovementType
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    *decimal.Decimal
	TotalPrice   *decimal.Decimal // Quantity * UnitPrice
	SupplierID   *string
	BatchNumber  string     // informativo, no es el vínculo autoritativo con el lote
	ExpiryDate   *time.Time // informativo
	Reference    string
	Notes        string
	MovementDate time.Time
	CreatedAt    time.Time
}

// SignedQuantity cantidad con signo según la dirección del tipo.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Type.IsIncoming() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// MovementAllocation vínculo movimiento → lote: qué cantidad de qué lote tocó el movimiento.
type MovementAllocation struct {
	MovementID string
	BatchID    string
	Quantity   decimal.Decimal
}
