package service

import (
	"context"
	"fmt"

	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/shopspring/decimal"
)

// CostEngine computes cost of goods sold from inventory lots.
type CostEngine struct {
	lots ports.CostLotRepository
}

// NewCostEngine creates a new CostEngine.
func NewCostEngine(lots ports.CostLotRepository) *CostEngine {
	return &CostEngine{lots: lots}
}

// ComputeCOGS sums average unit cost times quantity over items.
// A lot without a recorded cost counts as zero in its product's average;
// a product with no lots costs nothing.
func (e *CostEngine) ComputeCOGS(ctx context.Context, tenantID string, items []domain.OrderLineItem) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, nil
	}

	lots, err := e.lots.ListByTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading cost lots: %w", err)
	}

	averages := averageCosts(lots)

	total := decimal.Zero
	for _, item := range items {
		avg, ok := averages[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(avg.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total, nil
}

func averageCosts(lots []domain.CostLot) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, l := range lots {
		cost := decimal.Zero
		if l.CostPerUnit.Valid {
			cost = l.CostPerUnit.Decimal
		}
		sums[l.ProductID] = sums[l.ProductID].Add(cost)
		counts[l.ProductID]++
	}

	averages := make(map[string]decimal.Decimal, len(sums))
	for id, sum := range sums {
		averages[id] = sum.Div(decimal.NewFromInt(counts[id]))
	}
	return averages
}
