package http

import (
	"time"

	"github.com/jhoicas/foodstock-api/internal/application/dto"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/pkg/format"
)

// presenter convierte entidades y resultados de casos de uso en DTOs de respuesta.
type presenter struct {
	fmt *format.Formatter
	now func() time.Time
}

func newPresenter(f *format.Formatter) presenter {
	if f == nil {
		f = format.New(format.DefaultLocale)
	}
	return presenter{fmt: f, now: time.Now}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.DateLayout)
	return &s
}

func (p presenter) movement(m *entity.StockMovement) dto.MovementResponse {
	dir, _ := m.Type.Direction()
	return dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		UserID:       m.UserID,
		Type:         m.Type.String(),
		Direction:    string(dir),
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		TotalPrice:   m.TotalPrice,
		SupplierID:   m.SupplierID,
		LocationID:   m.LocationID,
		BatchNumber:  m.BatchNumber,
		ExpiryDate:   formatDate(m.ExpiryDate),
		Reference:    m.Reference,
		Notes:        m.Notes,
		MovementDate: m.MovementDate,
		CreatedAt:    m.CreatedAt,
	}
}

func (p presenter) batch(b *entity.StockBatch) dto.BatchResponse {
	out := dto.BatchResponse{
		ID:           b.ID,
		ProductID:    b.ProductID,
		BatchNumber:  b.BatchNumber,
		Quantity:     b.Quantity,
		ExpiryDate:   formatDate(b.ExpiryDate),
		ExpiryStatus: string(domaininv.ExpiryStatusFor(b.ExpiryDate, p.now())),
		PurchaseDate: b.PurchaseDate.Format(dto.DateLayout),
		SupplierID:   b.SupplierID,
		UnitPrice:    b.UnitPrice,
		IsActive:     b.IsActive,
		Version:      b.Version,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.ExpiryDate != nil {
		days := domaininv.DaysUntilExpiry(*b.ExpiryDate, p.now())
		out.DaysUntilExpiry = &days
	}
	return out
}

func (p presenter) consumption(r *domaininv.ConsumptionResult) *dto.ConsumptionResponse {
	if r == nil {
		return nil
	}
	out := &dto.ConsumptionResponse{
		Requested:  r.Requested,
		Consumed:   r.Consumed,
		Shortfall:  r.Shortfall,
		Partial:    r.Partial(),
		LegacyMode: r.LegacyMode,
		Cost:       r.Cost,
		Batches:    make([]dto.BatchConsumptionResponse, 0, len(r.Consumptions)),
	}
	for _, c := range r.Consumptions {
		out.Batches = append(out.Batches, dto.BatchConsumptionResponse{
			BatchID:     c.BatchID,
			BatchNumber: c.BatchNumber,
			Quantity:    c.Quantity,
			Remaining:   c.Remaining,
			Exhausted:   c.Exhausted,
			ExpiryDate:  formatDate(c.ExpiryDate),
		})
	}
	return out
}

func (p presenter) movementResult(r *inventory.MovementResult) dto.MovementResultResponse {
	out := dto.MovementResultResponse{
		Movement:     p.movement(r.Movement),
		Consumption:  p.consumption(r.Consumption),
		CurrentStock: r.CurrentStock,
		StockStatus:  string(r.StockStatus),
	}
	if r.Batch != nil {
		b := p.batch(r.Batch)
		out.Batch = &b
	}
	if r.Consumption != nil && r.Consumption.Partial() {
		out.Warning = p.fmt.Shortfall(r.Consumption.Shortfall, r.Movement.Unit)
	}
	return out
}

func (p presenter) movementDetail(d *inventory.MovementDetail) dto.MovementDetailResponse {
	out := dto.MovementDetailResponse{
		MovementResponse: p.movement(d.Movement),
		Allocations:      make([]dto.AllocationResponse, 0, len(d.Allocations)),
	}
	for _, a := range d.Allocations {
		out.Allocations = append(out.Allocations, dto.AllocationResponse{BatchID: a.BatchID, Quantity: a.Quantity})
	}
	return out
}

func (p presenter) expiring(e repository.ExpiringBatch) dto.ExpiringBatchResponse {
	return dto.ExpiringBatchResponse{
		BatchResponse: p.batch(&e.Batch),
		ProductName:   e.ProductName,
		Unit:          e.Unit,
		Display:       p.fmt.Quantity(e.Batch.Quantity, e.Unit),
	}
}

func (p presenter) reconciliation(r inventory.ReconciliationReport) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		CurrentStock:  r.CurrentStock,
		BatchTotal:    r.BatchTotal,
		Drift:         r.Drift,
		ActiveBatches: r.ActiveBatches,
		InSync:        r.InSync(),
		Applied:       r.Applied,
	}
}

func (p presenter) replenishment(s inventory.ReplenishmentSuggestion) dto.ReplenishmentSuggestionDTO {
	return dto.ReplenishmentSuggestionDTO{
		ProductID:          s.ProductID,
		SKU:                s.SKU,
		ProductName:        s.ProductName,
		Unit:               s.Unit,
		CurrentStock:       s.CurrentStock,
		MinStock:           s.MinStock,
		SuggestedOrderQty:  s.SuggestedOrderQty,
		UnitCost:           s.UnitCost,
		EstimatedOrderCost: s.EstimatedOrderCost,
		Status:             string(s.Status),
		DefaultSupplierID:  s.DefaultSupplierID,
		Priority:           s.Priority,
	}
}
