package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
)

func TestStockStatusFor(t *testing.T) {
	cases := []struct {
		current, min string
		want         inventory.StockStatus
	}{
		{"0", "10", inventory.StockStatusOut},
		{"-2", "10", inventory.StockStatusOut},
		{"5", "10", inventory.StockStatusCritical},
		{"5.001", "10", inventory.StockStatusLow},
		{"10", "10", inventory.StockStatusLow},
		{"10.5", "10", inventory.StockStatusOK},
		{"1", "0", inventory.StockStatusOK},
	}
	for _, c := range cases {
		got := inventory.StockStatusFor(qty(c.current), qty(c.min))
		assert.Equal(t, c.want, got, "stock %s / mínimo %s", c.current, c.min)
	}
}

func TestExpiryStatusFor(t *testing.T) {
	today := time.Date(2025, 6, 10, 18, 45, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		d := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		return &d
	}

	assert.Equal(t, inventory.ExpiryStatusNone, inventory.ExpiryStatusFor(nil, today))
	assert.Equal(t, inventory.ExpiryStatusExpired, inventory.ExpiryStatusFor(at(-1), today))
	assert.Equal(t, inventory.ExpiryStatusUrgent, inventory.ExpiryStatusFor(at(0), today))
	assert.Equal(t, inventory.ExpiryStatusUrgent, inventory.ExpiryStatusFor(at(2), today))
	assert.Equal(t, inventory.ExpiryStatusWarning, inventory.ExpiryStatusFor(at(3), today))
	assert.Equal(t, inventory.ExpiryStatusWarning, inventory.ExpiryStatusFor(at(7), today))
	assert.Equal(t, inventory.ExpiryStatusOK, inventory.ExpiryStatusFor(at(8), today))
	assert.Equal(t, -1, inventory.DaysUntilExpiry(*at(-1), today))
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// (10 * 2 + 10 * 4) / 20 = 3
	got := inventory.CostCalculator(qty("10"), qty("2"), qty("10"), qty("4"))
	assert.True(t, got.Equal(qty("3")), "costo %s", got)

	// sin stock previo el costo de la entrada manda
	got = inventory.CostCalculator(qty("0"), qty("9"), qty("5"), qty("1.25"))
	assert.True(t, got.Equal(qty("1.25")), "costo %s", got)
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(qty("0.001")))
	assert.NoError(t, inventory.ValidateQuantity(qty("1500")))
	assert.Error(t, inventory.ValidateQuantity(qty("0")))
	assert.Error(t, inventory.ValidateQuantity(qty("1.2345")))
}

func TestValidateUnitPrice(t *testing.T) {
	assert.NoError(t, inventory.ValidateUnitPrice(qty("0")))
	assert.NoError(t, inventory.ValidateUnitPrice(qty("3.1234")))
	assert.ErrorIs(t, inventory.ValidateUnitPrice(qty("3.12345")), domain.ErrInvalidInput, "NUMERIC(14,4) lo redondearía en silencio")
	assert.ErrorIs(t, inventory.ValidateUnitPrice(qty("-0.01")), domain.ErrInvalidInput)
}

func TestLineTotal_RedondeaALaEscalaDePrecio(t *testing.T) {
	// 1.255 * 0.3333 = 0.41829150
	assert.True(t, inventory.LineTotal(qty("1.255"), qty("0.3333")).Equal(qty("0.4183")))
	assert.True(t, inventory.LineTotal(qty("12.5"), qty("3.10")).Equal(qty("38.75")))
}
