package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales admitidos en cantidades (kg, litros). Coincide con NUMERIC(14,3).
const QuantityScale = 3

// ValidateQuantity exige cantidad > 0 y sin más de QuantityScale decimales (no se redondea en silencio).
func ValidateQuantity(q decimal.Decimal) error {
	if !q.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if !q.Equal(q.Truncate(QuantityScale)) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// PriceScale decimales admitidos en precios unitarios y totales. Coincide con NUMERIC(14,4).
const PriceScale = 4

// ValidateUnitPrice exige precio >= 0 y sin más de PriceScale decimales.
func ValidateUnitPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	if !p.Equal(p.Truncate(PriceScale)) {
		return fmt.Errorf("%w: unit_price admite máximo %d decimales", domain.ErrInvalidInput, PriceScale)
	}
	return nil
}

// LineTotal cantidad × precio redondeado a PriceScale, el mismo valor que guarda la columna total_price.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(PriceScale)
}

// TruncateToDate deja solo la fecha (medianoche UTC), como la columna DATE.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
