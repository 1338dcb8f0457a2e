package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/internal/domain/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentSuggestion sugerencia de pedido para un producto en o bajo su stock mínimo.
type ReplenishmentSuggestion struct {
	ProductID          string
	SKU                string
	ProductName        string
	Unit               string
	CurrentStock       decimal.Decimal
	MinStock           decimal.Decimal
	SuggestedOrderQty  decimal.Decimal
	UnitCost           decimal.Decimal // precio de compra promedio; cero si no se conoce
	EstimatedOrderCost decimal.Decimal
	Status             inventory.StockStatus
	DefaultSupplierID  *string
	Priority           int // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición de la empresa.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos con current_stock <= min_stock con la cantidad
// sugerida: reorder_quantity si está definida, si no 1.5 × mínimo - actual.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID string) ([]ReplenishmentSuggestion, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	products, err := uc.productRepo.ListBelowMinStock(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar productos bajo mínimo: %w", err)
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]ReplenishmentSuggestion, 0, len(products))
	for _, p := range products {
		var qty decimal.Decimal
		if p.ReorderQuantity != nil && p.ReorderQuantity.GreaterThan(decimal.Zero) {
			qty = *p.ReorderQuantity
		} else {
			qty = p.MinStock.Mul(factor).Sub(p.CurrentStock)
		}
		if qty.LessThan(decimal.Zero) {
			qty = decimal.Zero
		}
		unitCost := decimal.Zero
		if p.PurchasePrice != nil {
			unitCost = *p.PurchasePrice
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			Unit:               p.Unit,
			CurrentStock:       p.CurrentStock,
			MinStock:           p.MinStock,
			SuggestedOrderQty:  qty,
			UnitCost:           unitCost,
			EstimatedOrderCost: qty.Mul(unitCost),
			Status:             inventory.StockStatusFor(p.CurrentStock, p.MinStock),
			DefaultSupplierID:  p.DefaultSupplierID,
		})
	}

	// Primero sin stock, luego crítico, luego bajo; dentro de cada grupo mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if statusRank(a.Status) != statusRank(b.Status) {
			return statusRank(a.Status) < statusRank(b.Status)
		}
		defA := a.MinStock.Sub(a.CurrentStock)
		defB := b.MinStock.Sub(b.CurrentStock)
		return defA.GreaterThan(defB)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func statusRank(s inventory.StockStatus) int {
	switch s {
	case inventory.StockStatusOut:
		return 0
	case inventory.StockStatusCritical:
		return 1
	case inventory.StockStatusLow:
		return 2
	default:
		return 3
	}
}
