package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas sin hora (caducidad, recepción).
const DateLayout = "2006-01-02"

// RegisterMovementRequest body para POST /api/inventory/movements.
// quantity siempre positiva; la dirección la da type.
type RegisterMovementRequest struct {
	ProductID    string           `json:"product_id" validate:"required,uuid"`
	Type         string           `json:"type" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity" swaggertype:"string" example:"2.500"`
	Unit         string           `json:"unit,omitempty" validate:"omitempty,max=20"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string"`
	SupplierID   *string          `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	LocationID   *string          `json:"location_id,omitempty" validate:"omitempty,uuid"`
	BatchNumber  string           `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	ExpiryDate   *string          `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2025-01-31"`
	MovementDate *time.Time       `json:"movement_date,omitempty"`
	Reference    string           `json:"reference,omitempty" validate:"omitempty,max=255"`
	Notes        string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// BulkMovementRequest body para POST /api/inventory/movements/bulk (una sola transacción).
type BulkMovementRequest struct {
	Movements []RegisterMovementRequest `json:"movements" validate:"required,min=1,max=500,dive"`
}

// UpdateBatchRequest body para PATCH /api/inventory/batches/:id. Solo se aplican los campos enviados.
type UpdateBatchRequest struct {
	Quantity      *decimal.Decimal `json:"quantity,omitempty" swaggertype:"string"`
	ExpiryDate    *string          `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ClearExpiry   bool             `json:"clear_expiry,omitempty"`
	SupplierID    *string          `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	ClearSupplier bool             `json:"clear_supplier,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string"`
	BatchNumber   *string          `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	Version       *int64           `json:"version,omitempty" validate:"omitempty,min=1"`
}

// MovementListQuery query string de GET /api/inventory/movements.
type MovementListQuery struct {
	ProductID string `query:"product_id" validate:"omitempty,uuid"`
	Type      string `query:"type"`
	From      string `query:"from"` // YYYY-MM-DD o RFC3339
	To        string `query:"to"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset    int    `query:"offset" validate:"omitempty,min=0"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"product_id"`
	UserID       string           `json:"user_id"`
	Type         string           `json:"type"`
	Direction    string           `json:"direction"`
	Quantity     decimal.Decimal  `json:"quantity" swaggertype:"string"`
	Unit         string           `json:"unit"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty" swaggertype:"string"`
	SupplierID   *string          `json:"supplier_id,omitempty"`
	LocationID   *string          `json:"location_id,omitempty"`
	BatchNumber  string           `json:"batch_number,omitempty"`
	ExpiryDate   *string          `json:"expiry_date,omitempty"`
	Reference    string           `json:"reference,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	MovementDate time.Time        `json:"movement_date"`
	CreatedAt    time.Time        `json:"created_at"`
}

// AllocationResponse cantidad de un lote tocada por un movimiento.
type AllocationResponse struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity" swaggertype:"string"`
}

// MovementDetailResponse movimiento con sus lotes.
type MovementDetailResponse struct {
	MovementResponse
	Allocations []AllocationResponse `json:"allocations"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BatchConsumptionResponse cantidad tomada de un lote en una salida.
type BatchConsumptionResponse struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	Remaining   decimal.Decimal `json:"remaining" swaggertype:"string"`
	Exhausted   bool            `json:"exhausted"`
	ExpiryDate  *string         `json:"expiry_date,omitempty"`
}

// ConsumptionResponse resultado del descuento FIFO.
type ConsumptionResponse struct {
	Requested  decimal.Decimal            `json:"requested" swaggertype:"string"`
	Consumed   decimal.Decimal            `json:"consumed" swaggertype:"string"`
	Shortfall  decimal.Decimal            `json:"shortfall" swaggertype:"string"`
	Partial    bool                       `json:"partial"`
	LegacyMode bool                       `json:"legacy_mode"`
	Cost       decimal.Decimal            `json:"cost" swaggertype:"string"`
	Batches    []BatchConsumptionResponse `json:"batches"`
}

// MovementResultResponse respuesta de registrar un movimiento.
type MovementResultResponse struct {
	Movement     MovementResponse     `json:"movement"`
	Batch        *BatchResponse       `json:"batch,omitempty"`
	Consumption  *ConsumptionResponse `json:"consumption,omitempty"`
	CurrentStock decimal.Decimal      `json:"current_stock" swaggertype:"string"`
	StockStatus  string               `json:"stock_status"`
	Warning      string               `json:"warning,omitempty"`
}

// BulkMovementResponse resultados en el mismo orden que la petición.
type BulkMovementResponse struct {
	Results []MovementResultResponse `json:"results"`
}

// BatchResponse lote con su estado de caducidad.
type BatchResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity" swaggertype:"string"`
	ExpiryDate      *string          `json:"expiry_date,omitempty"`
	DaysUntilExpiry *int             `json:"days_until_expiry,omitempty"`
	ExpiryStatus    string           `json:"expiry_status"`
	PurchaseDate    string           `json:"purchase_date"`
	SupplierID      *string          `json:"supplier_id,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string"`
	IsActive        bool             `json:"is_active"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// BatchListResponse lotes activos en orden de consumo.
type BatchListResponse struct {
	ProductID string          `json:"product_id"`
	Total     decimal.Decimal `json:"total" swaggertype:"string"`
	Items     []BatchResponse `json:"items"`
}

// ExpiringBatchResponse lote por caducar con datos del producto.
type ExpiringBatchResponse struct {
	BatchResponse
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	Display     string `json:"display"` // cantidad formateada según DISPLAY_LOCALE
}

// BatchUpdateResponse lote corregido y descuadre resultante con el stock del producto.
type BatchUpdateResponse struct {
	Batch        BatchResponse   `json:"batch"`
	CurrentStock decimal.Decimal `json:"current_stock" swaggertype:"string"`
	BatchTotal   decimal.Decimal `json:"batch_total" swaggertype:"string"`
	Drift        decimal.Decimal `json:"drift" swaggertype:"string"`
}

// ReconciliationResponse comparación current_stock ↔ suma de lotes activos.
type ReconciliationResponse struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	CurrentStock  decimal.Decimal `json:"current_stock" swaggertype:"string"`
	BatchTotal    decimal.Decimal `json:"batch_total" swaggertype:"string"`
	Drift         decimal.Decimal `json:"drift" swaggertype:"string"`
	ActiveBatches int             `json:"active_batches"`
	InSync        bool            `json:"in_sync"`
	Applied       bool            `json:"applied"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto en o bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Unit               string          `json:"unit"`
	CurrentStock       decimal.Decimal `json:"current_stock" swaggertype:"string"`
	MinStock           decimal.Decimal `json:"min_stock" swaggertype:"string"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty" swaggertype:"string"`  // reorder_quantity o 1.5 × mínimo - actual
	UnitCost           decimal.Decimal `json:"unit_cost" swaggertype:"string"`            // precio de compra promedio
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost" swaggertype:"string"` // SuggestedOrderQty × UnitCost
	Status             string          `json:"status"`
	DefaultSupplierID  *string         `json:"default_supplier_id,omitempty"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// ReplenishmentListResponse lista de reposición.
type ReplenishmentListResponse struct {
	Total          int                          `json:"total"`
	Replenishments []ReplenishmentSuggestionDTO `json:"replenishments"`
}
