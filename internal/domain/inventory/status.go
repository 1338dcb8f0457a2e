package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus semáforo de stock de un producto frente a su mínimo.
type StockStatus string

const (
	StockStatusOK       StockStatus = "ok"
	StockStatusLow      StockStatus = "low"
	StockStatusCritical StockStatus = "critical"
	StockStatusOut      StockStatus = "out"
)

// StockStatusFor: out <= 0, critical <= 50% del mínimo, low <= mínimo, ok en otro caso.
func StockStatusFor(current, min decimal.Decimal) StockStatus {
	switch {
	case current.LessThanOrEqual(decimal.Zero):
		return StockStatusOut
	case current.LessThanOrEqual(min.Div(decimal.NewFromInt(2))):
		return StockStatusCritical
	case current.LessThanOrEqual(min):
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// ExpiryStatus estado de caducidad de un lote.
type ExpiryStatus string

const (
	ExpiryStatusOK      ExpiryStatus = "ok"
	ExpiryStatusWarning ExpiryStatus = "warning"
	ExpiryStatusUrgent  ExpiryStatus = "urgent"
	ExpiryStatusExpired ExpiryStatus = "expired"
	ExpiryStatusNone    ExpiryStatus = "none" // lote sin caducidad
)

// DaysUntilExpiry días de calendario entre today y expiry (negativo si ya caducó).
func DaysUntilExpiry(expiry, today time.Time) int {
	e := TruncateToDate(expiry)
	t := TruncateToDate(today)
	return int(e.Sub(t).Hours() / 24)
}

// ExpiryStatusFor: expired < 0 días, urgent <= 2, warning <= 7, ok en otro caso.
func ExpiryStatusFor(expiry *time.Time, today time.Time) ExpiryStatus {
	if expiry == nil {
		return ExpiryStatusNone
	}
	days := DaysUntilExpiry(*expiry, today)
	switch {
	case days < 0:
		return ExpiryStatusExpired
	case days <= 2:
		return ExpiryStatusUrgent
	case days <= 7:
		return ExpiryStatusWarning
	default:
		return ExpiryStatusOK
	}
}
