package entities

// FormularyEntry is one row of the plan formulary file. DrugName is
// synthesized from the RxCUI because the source file carries no display
// name of its own.
type FormularyEntry struct {
	DrugName            string `json:"drug_name"`
	FormularyID         string `json:"formulary_id"`
	FormularyVersion    string `json:"formulary_version"`
	ContractYear        string `json:"contract_year"`
	RxCUI               string `json:"rxcui"`
	NDC                 string `json:"ndc"`
	Tier                int    `json:"tier"`
	TierLabel           string `json:"tier_label"`
	QuantityLimit       bool   `json:"quantity_limit"`
	QuantityLimitAmount string `json:"quantity_limit_amount"`
	QuantityLimitDays   string `json:"quantity_limit_days"`
	PriorAuth           bool   `json:"prior_auth_required"`
	StepTherapy         bool   `json:"step_therapy_required"`
}

// TierLabel maps a numeric formulary tier to its display label.
func TierLabel(tier int) string {
	switch tier {
	case 1:
		return "Generic"
	case 2:
		return "Preferred"
	case 3:
		return "Non-Preferred"
	case 4:
		return "Specialty"
	case 5:
		return "Excluded"
	default:
		return "Unknown"
	}
}

// FormularyStats summarizes utilization-management flags across the formulary.
type FormularyStats struct {
	Total       int `json:"total"`
	PriorAuth   int `json:"pa"`
	StepTherapy int `json:"step"`
}
