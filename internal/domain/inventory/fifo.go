package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchConsumption cantidad tomada de un lote concreto.
type BatchConsumption struct {
	BatchID     string
	BatchNumber string
	Quantity    decimal.Decimal  // cantidad tomada
	Remaining   decimal.Decimal  // cantidad que queda en el lote
	Exhausted   bool             // el lote quedó en cero (inactivo)
	UnitPrice   *decimal.Decimal // costo del lote, si se conoce
	ExpiryDate  *time.Time
}

// ConsumptionResult resultado de descontar lotes. Shortfall > 0 indica que los lotes activos
// no alcanzaban: no es un error, el llamador decide si advertir, bloquear o registrar.
type ConsumptionResult struct {
	Consumptions []BatchConsumption
	Requested    decimal.Decimal
	Consumed     decimal.Decimal
	Shortfall    decimal.Decimal
	LegacyMode   bool            // el producto no tenía lotes activos: sin trazabilidad por lote
	Cost         decimal.Decimal // costo FIFO de lo consumido (solo lotes con costo)
}

// Partial true si quedó cantidad sin cubrir por lotes.
func (r ConsumptionResult) Partial() bool {
	return r.Shortfall.GreaterThan(decimal.Zero)
}

// SortForConsumption ordena in-place: caducidad ascendente con los lotes sin caducidad al final,
// luego fecha de compra ascendente. created_at e id desempatan para que el orden sea determinista.
func SortForConsumption(batches []*entity.StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpiryDate != nil && b.ExpiryDate == nil:
			return true
		case a.ExpiryDate == nil && b.ExpiryDate != nil:
			return false
		case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.PurchaseDate.Equal(b.PurchaseDate) {
			return a.PurchaseDate.Before(b.PurchaseDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// ConsumeFIFO descuenta quantity de los lotes disponibles (primero el que caduca antes, luego el más antiguo).
// Modifica los lotes recibidos y devuelve el resultado junto con los lotes tocados, en orden de visita,
// para que el llamador los persista. quantity debe ser positiva y con a lo sumo QuantityScale decimales.
func ConsumeFIFO(batches []*entity.StockBatch, quantity decimal.Decimal, now time.Time) (ConsumptionResult, []*entity.StockBatch, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return ConsumptionResult{}, nil, err
	}

	candidates := make([]*entity.StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsAvailable() {
			candidates = append(candidates, b)
		}
	}

	result := ConsumptionResult{
		Consumptions: []BatchConsumption{},
		Requested:    quantity,
		Consumed:     decimal.Zero,
		Shortfall:    quantity,
		Cost:         decimal.Zero,
	}
	if len(candidates) == 0 {
		result.LegacyMode = true
		return result, nil, nil
	}
	SortForConsumption(candidates)

	remaining := quantity
	touched := make([]*entity.StockBatch, 0, len(candidates))
	for _, b := range candidates {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		b.SetQuantity(b.Quantity.Sub(take), now)
		remaining = remaining.Sub(take)

		c := BatchConsumption{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
			Remaining:   b.Quantity,
			Exhausted:   !b.IsActive,
			UnitPrice:   b.UnitPrice,
			ExpiryDate:  b.ExpiryDate,
		}
		if b.UnitPrice != nil {
			result.Cost = result.Cost.Add(take.Mul(*b.UnitPrice))
		}
		result.Consumptions = append(result.Consumptions, c)
		result.Consumed = result.Consumed.Add(take)
		touched = append(touched, b)
	}
	result.Shortfall = remaining
	return result, touched, nil
}

// NewPurchaseBatch construye el lote que genera una compra. purchaseDate cero = hoy.
func NewPurchaseBatch(id string, m *entity.StockMovement, purchaseDate time.Time, now time.Time) *entity.StockBatch {
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	return &entity.StockBatch{
		ID:           id,
		ProductID:    m.ProductID,
		LocationID:   m.LocationID,
		BatchNumber:  m.BatchNumber,
		Quantity:     m.Quantity,
		ExpiryDate:   m.ExpiryDate,
		PurchaseDate: TruncateToDate(purchaseDate),
		SupplierID:   m.SupplierID,
		UnitPrice:    m.UnitPrice,
		IsActive:     true,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SumActive suma de cantidades de los lotes activos.
func SumActive(batches []*entity.StockBatch) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.IsAvailable() {
			total = total.Add(b.Quantity)
		}
	}
	return total
}
