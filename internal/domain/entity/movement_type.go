package entity

import "github.com/jhoicas/foodstock-api/internal/domain"

// Direction efecto de un movimiento sobre el stock.
type Direction string

const (
	DirectionIn  Direction = "in"  // aumenta stock
	DirectionOut Direction = "out" // disminuye stock
)

// MovementType tipo de movimiento de stock. Literales estables (contrato con la BD y la API).
type MovementType string

const (
	MovementTypePurchase        MovementType = "purchase"
	MovementTypeSale            MovementType = "sale"
	MovementTypeAdjustmentPlus  MovementType = "adjustment_plus"
	MovementTypeAdjustmentMinus MovementType = "adjustment_minus"
	MovementTypeTransferIn      MovementType = "transfer_in"
	MovementTypeTransferOut     MovementType = "transfer_out"
	MovementTypeWaste           MovementType = "waste"
	MovementTypeReturnSupplier  MovementType = "return_supplier"
	MovementTypeReturnCustomer  MovementType = "return_customer"
	MovementTypeInventoryCount  MovementType = "inventory_count"
)

// movementDirections única tabla de clasificación: cada tipo conocido lleva su dirección.
var movementDirections = map[MovementType]Direction{
	MovementTypePurchase:        DirectionIn,
	MovementTypeSale:            DirectionOut,
	MovementTypeAdjustmentPlus:  DirectionIn,
	MovementTypeAdjustmentMinus: DirectionOut,
	MovementTypeTransferIn:      DirectionIn,
	MovementTypeTransferOut:     DirectionOut,
	MovementTypeWaste:           DirectionOut,
	MovementTypeReturnSupplier:  DirectionOut,
	MovementTypeReturnCustomer:  DirectionIn,
	MovementTypeInventoryCount:  DirectionIn,
}

// AllMovementTypes devuelve los diez tipos en orden de declaración.
func AllMovementTypes() []MovementType {
	return []MovementType{
		MovementTypePurchase, MovementTypeSale,
		MovementTypeAdjustmentPlus, MovementTypeAdjustmentMinus,
		MovementTypeTransferIn, MovementTypeTransferOut,
		MovementTypeWaste, MovementTypeReturnSupplier,
		MovementTypeReturnCustomer, MovementTypeInventoryCount,
	}
}

// ParseMovementType valida el literal. Un tipo desconocido es un error de datos: no hay valor por defecto.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if _, ok := movementDirections[t]; !ok {
		return "", domain.ErrInvalidMovementType
	}
	return t, nil
}

// IsValid indica si el tipo pertenece a la enumeración.
func (t MovementType) IsValid() bool {
	_, ok := movementDirections[t]
	return ok
}

// Direction clasifica el tipo. Falla con ErrInvalidMovementType si el tipo no existe.
func (t MovementType) Direction() (Direction, error) {
	d, ok := movementDirections[t]
	if !ok {
		return "", domain.ErrInvalidMovementType
	}
	return d, nil
}

// IsIncoming true si el tipo es válido y aumenta stock.
func (t MovementType) IsIncoming() bool {
	return movementDirections[t] == DirectionIn
}

// CreatesBatch solo las compras generan un lote trazable.
func (t MovementType) CreatesBatch() bool {
	return t == MovementTypePurchase
}

// ConsumesBatches toda salida descuenta lotes (FIFO).
func (t MovementType) ConsumesBatches() bool {
	return movementDirections[t] == DirectionOut
}

func (t MovementType) String() string { return string(t) }
