package entities

// DrugStats summarizes the loaded catalog. TotalDrugs counts unique drug
// names; TotalRecords counts raw rows (the same drug can appear for several
// states).
type DrugStats struct {
	TotalDrugs             int            `json:"total_drugs"`
	TotalRecords           int            `json:"total_records"`
	TotalCost              float64        `json:"total_cost"`
	AveragePMPMCost        float64        `json:"avg_pmpm_cost"`
	TotalPrescriptionFills int            `json:"total_prescription_fills"`
	TherapeuticClasses     int            `json:"therapeutic_classes"`
	States                 int            `json:"states"`
	TEDistribution         map[string]int `json:"te_code_distribution"`
}

// ClassCost aggregates spend for one therapeutic class.
type ClassCost struct {
	TherapeuticClass string  `json:"therapeutic_class"`
	DrugCount        int     `json:"drug_count"`
	TotalCost        float64 `json:"total_cost"`
	AveragePMPM      float64 `json:"avg_pmpm_cost"`
}

// StateCost aggregates spend for one state.
type StateCost struct {
	State       string  `json:"state"`
	DrugCount   int     `json:"drug_count"`
	TotalCost   float64 `json:"total_cost"`
	AveragePMPM float64 `json:"avg_pmpm_cost"`
}

// AgeBandCost aggregates spend for one member age band.
type AgeBandCost struct {
	AgeBand     string  `json:"age_band"`
	DrugCount   int     `json:"drug_count"`
	TotalCost   float64 `json:"total_cost"`
	AveragePMPM float64 `json:"avg_pmpm_cost"`
}

// CostAnalysis is the cost breakdown served by the cost-analysis endpoint.
type CostAnalysis struct {
	ByTherapeuticClass []ClassCost   `json:"by_therapeutic_class"`
	ByState            []StateCost   `json:"by_state"`
	ByAgeBand          []AgeBandCost `json:"by_age_band"`
}
