package entities

import "time"

// CostImpact is one accepted saving recorded in the cost-impact ledger.
type CostImpact struct {
	ID           int64     `json:"id"`
	OriginalCost float64   `json:"original_cost"`
	ReducedCost  float64   `json:"reduced_cost"`
	CreatedAt    time.Time `json:"timestamp"`
}

// CostImpactSummary aggregates the ledger into plan-level totals.
type CostImpactSummary struct {
	OriginalTotalCost float64 `json:"original_total_cost"`
	ReducedTotalCost  float64 `json:"reduced_total_cost"`
	TotalSavings      float64 `json:"total_savings"`
	ReductionPercent  float64 `json:"reduction_percent"`
}
