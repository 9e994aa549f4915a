package entities

// DrugForecast is the forecast response for one drug: the historical series
// it was fit on plus the projection and its confidence band. All projection
// slices share the same length and ordering, with lower <= forecast <= upper
// and lower bounds clamped at zero.
type DrugForecast struct {
	DrugName           string    `json:"drug_name"`
	TrendModel         string    `json:"trend_model"`
	HistoricalPeriods  []string  `json:"historical_years"`
	HistoricalSpending []float64 `json:"historical_spending"`
	Periods            []string  `json:"years"`
	Forecast           []float64 `json:"forecast"`
	PMPMCost           []float64 `json:"pmpm_cost"`
	ConfidenceLower    []float64 `json:"confidence_lower"`
	ConfidenceUpper    []float64 `json:"confidence_upper"`
}
